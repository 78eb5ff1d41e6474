package activity

var demoActors = []Actor{
	{ID: "user-1", Name: "Sarah Johnson", Role: "Brand Manager"},
	{ID: "user-2", Name: "Mike Chen", Role: "UX Researcher"},
	{ID: "user-3", Name: "Emma Davis", Role: "Strategy Lead"},
	{ID: "user-4", Name: "Alex Turner", Role: "Product Designer"},
}

// SeedDemo fills an empty feed with sample activities. It reports whether
// anything was added.
func SeedDemo(s *Store) bool {
	if len(s.Activities(nil)) > 0 {
		return false
	}

	s.AddActivity(TypeTeamMemberAdded, CategoryCollaboration, "New Team Member", demoActors[3],
		Metadata{"memberName": "Alex Turner"},
		Options{Description: "Alex Turner joined the workspace as Product Designer"})
	s.AddActivity(TypePersonaUpdated, CategoryPersonas, "Persona Updated", demoActors[2],
		Metadata{"personaId": "persona-1", "personaName": "Tech-Savvy Millennial"},
		Options{Description: "Goals and frustrations refined after interview round"})
	s.AddActivity(TypeResearchStarted, CategoryResearch, "New Research Started", demoActors[1],
		Metadata{"planId": "plan-1", "planTitle": "Q1 2024 Brand Perception Study"},
		Options{Description: "Workshop sessions have begun with 12 participants"})
	s.AddActivity(TypeAssetApproved, CategoryBrand, "Brand Asset Approved", demoActors[0],
		Metadata{
			"assetId":    "asset-1",
			"assetTitle": "Golden Circle Framework",
			"fromStatus": "ready-to-validate",
			"toStatus":   "approved",
		},
		Options{Description: "Golden Circle Framework has been approved and is now ready for use", IsImportant: true})
	return true
}
