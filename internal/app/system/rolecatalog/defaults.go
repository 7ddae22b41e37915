// internal/app/system/rolecatalog/defaults.go
package rolecatalog

// Default returns the built-in catalog used when no catalog file is
// configured or a configured file fails to load at startup. Permission
// checks stay well-defined rather than vacuously failing.
func Default() *Catalog {
	c, err := build(defaultFile, "builtin")
	if err != nil {
		// The built-in table is a compile-time constant; a build failure
		// here is a programming error.
		panic("rolecatalog: built-in default catalog invalid: " + err.Error())
	}
	return c
}

var defaultFile = catalogFile{
	SystemRoles: []Definition{
		{
			ID:          "admin",
			Name:        "Platform Administrator",
			Permissions: []string{Wildcard},
		},
		{
			ID:   "auditor",
			Name: "Platform Auditor",
			Permissions: []string{
				"engagement.view",
				"engagement.manage",
				"controls.view",
				"controls.approve",
				"evidence.view",
				"evidence.request",
				"findings.view",
				"findings.manage",
				"reports.view",
			},
		},
	},
	OrganizationRoles: []Definition{
		{
			ID:   "orgAdmin",
			Name: "Organization Administrator",
			Permissions: []string{
				"org.manage",
				"org.members.manage",
				"engagement.view",
				"controls.view",
				"evidence.view",
				"evidence.upload",
				"reports.view",
			},
		},
		{
			ID:   "sme",
			Name: "Subject Matter Expert",
			Permissions: []string{
				"engagement.view",
				"controls.view",
				"evidence.view",
				"evidence.upload",
			},
		},
		{
			ID:          PendingRole,
			Name:        "Pending",
			Description: "Sentinel role for accounts awaiting role assignment; grants nothing.",
			Permissions: []string{},
		},
	},
	EngagementRoles: []Definition{
		{
			ID:   "leadAuditor",
			Name: "Lead Auditor",
			Permissions: []string{
				"engagement.view",
				"engagement.manage",
				"engagement.members.manage",
				"controls.view",
				"controls.approve",
				"evidence.view",
				"evidence.request",
				"findings.view",
				"findings.manage",
				"reports.view",
				"reports.export",
			},
		},
		{
			ID:   "controlOwner",
			Name: "Control Owner",
			Permissions: []string{
				"engagement.view",
				"controls.view",
				"controls.respond",
				"evidence.view",
				"evidence.upload",
			},
		},
		{
			ID:   "sme",
			Name: "Engagement SME",
			Permissions: []string{
				"engagement.view",
				"controls.view",
				"evidence.view",
				"evidence.upload",
			},
		},
		{
			ID:   "observer",
			Name: "Observer",
			Permissions: []string{
				"engagement.view",
				"controls.view",
				"reports.view",
			},
		},
	},
}
