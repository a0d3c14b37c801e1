package rules

// Built-in dental-clinic ruleset. Dimensions are inches throughout; the
// tiering parameter is the total treatment-room count of the project.
//
// The records mirror the design team's rule sheets: sizes come from the
// published dimension models, adjacency and separation from the circulation
// rules, and visibility from the patient-sightline guidance. Rooms whose
// rules are still marked TBD (lab, mechanical) carry only the pieces that
// are resolved; everything else is skipped by the compiler with a log note.

const adaClearWidth = 34 // standard ADA door clear width

func intp(v int) *int { return &v }

// Dental returns the built-in dental-clinic registry.
func Dental() *Registry {
	reg, err := NewRegistry(dentalRecords()...)
	if err != nil {
		// The built-in ruleset is validated by tests; a failure here is a
		// programming error.
		panic(err)
	}
	return reg
}

func dentalRecords() []*RoomTypeRule {
	ada := &ADAClearance{MinClearWidth: adaClearWidth, RequiredEntries: 1}

	return []*RoomTypeRule{
		{
			Type:        "clinicalCorridor",
			Category:    CategoryClinical,
			Description: "Main clinical circulation spine.",
			Size: SizeRule{
				Min: &Dims{Width: 60, Length: 480},
				Max: &Dims{Width: 72, Length: 2400},
			},
			Orientation: &Orientation{Relation: RelationParallel, Reference: EdgeLong},
			EntryTiers:  []EntryTier{{MinEntries: 2}},
			Adjacency: AdjacencyRules{
				Direct: []Rule{
					{Kind: KindAdjacent, Target: "treatmentRoom", Hard: true},
					{Kind: KindAdjacent, Target: "sterilization", Hard: true},
				},
				Preferred: []Rule{
					{Kind: KindAdjacent, Target: "consult", Weight: 1},
					{Kind: KindAdjacent, Target: "patientRestroom", Weight: 1},
				},
				Separation: []Rule{
					{Kind: KindSeparate, Target: "patientLounge", Hard: true},
					{Kind: KindSeparate, Target: "reception", Hard: true},
					{Kind: KindSeparate, Target: "staffLounge", Hard: true},
				},
			},
			Visibility: []Rule{
				{Kind: KindAvoidVisibility, Group: CategoryPublic, Weight: 3},
			},
			Scalability: "length grows with treatment-room count",
		},
		{
			Type:        "treatmentRoom",
			Category:    CategoryClinical,
			Description: "Standard side-toe treatment room envelope.",
			Size: SizeRule{
				Ideal: &Dims{Width: 100, Length: 132},
				Min:   &Dims{Width: 97, Length: 126},
				Max:   &Dims{Width: 108, Length: 132},
			},
			Orientation: &Orientation{Relation: RelationPerpendicular, Reference: EdgeLong},
			EntryTiers:  []EntryTier{{MinEntries: 1, MaxEntries: intp(2)}},
			EntryRules: []Rule{
				{Kind: KindEntryFrom, Target: "clinicalCorridor", Hard: true},
				{Kind: KindEntryNotFrom, Target: "patientLounge", Hard: true},
			},
			Adjacency: AdjacencyRules{
				Direct: []Rule{
					{Kind: KindAdjacent, Target: "clinicalCorridor", Hard: true},
				},
			},
			Clearances: Clearances{ADA: ada},
		},
		{
			Type:        "sterilization",
			Category:    CategoryClinical,
			Description: "Sterilization core; long axis grows with doors along the long side.",
			Size: SizeRule{
				Models: []DimensionModel{
					{Label: "compact", TreatmentRoomsMin: intp(5), TreatmentRoomsMax: intp(8), Width: intp(110), Length: intp(152)},
					{Label: "enhanced", TreatmentRoomsMin: intp(9), TreatmentRoomsMax: intp(14), Width: intp(110), Length: intp(168)},
					{Label: "elite", TreatmentRoomsMin: intp(15), TreatmentRoomsMax: intp(22), Width: intp(110), Length: intp(268)},
				},
			},
			Orientation: &Orientation{Relation: RelationParallel, Reference: EdgeLong},
			EntryTiers: []EntryTier{
				{TreatmentRoomsMin: intp(5), TreatmentRoomsMax: intp(8), MinEntries: 1, MaxEntries: intp(1)},
				{TreatmentRoomsMin: intp(9), MinEntries: 2, MaxEntries: intp(2)},
			},
			EntryRules: []Rule{
				{Kind: KindEntryFrom, Target: "clinicalCorridor", Hard: true},
			},
			Adjacency: AdjacencyRules{
				Preferred: []Rule{
					{Kind: KindAdjacent, Target: "clinicalCorridor", Weight: 2},
				},
			},
			Visibility: []Rule{
				{Kind: KindAvoidVisibility, Target: "clinicalCorridor", Weight: 1},
			},
			Clearances: Clearances{
				ADA:   ada,
				Ideal: []Rule{{Kind: KindNotWithinDistance, Target: "crossoverHallway", MinDistance: intp(36), Weight: 1}},
			},
			Scalability: "consider switching dimension tiers at the first entry threshold",
		},
		{
			Type:        "lab",
			Category:    CategoryClinical,
			Description: "Lab rules largely unresolved; envelope only.",
			Size: SizeRule{
				Min: &Dims{Width: 96, Length: 72},
			},
			EntryTiers: []EntryTier{{MinEntries: 1}},
			Clearances: Clearances{ADA: ada},
			Adjacency: AdjacencyRules{
				Preferred: []Rule{
					{Kind: KindAdjacent, Target: "sterilization", Weight: 2},
				},
			},
			Scalability: "TBD",
		},
		{
			Type:        "consult",
			Category:    CategoryClinical,
			Description: "Consult room; second entry preferred off the clinical side.",
			Size: SizeRule{
				Min: &Dims{Width: 96, Length: 96},
				Max: &Dims{Width: 156, Length: 120},
			},
			EntryTiers: []EntryTier{{MinEntries: 1, MaxEntries: intp(2)}},
			EntryRules: []Rule{
				{Kind: KindEntryWithinDistance, Target: "reception", MaxDistance: intp(180), Hard: true},
				{Kind: KindEntryFrom, Target: "clinicalCorridor"},
				{Kind: KindEntryFrom, Target: "crossoverHallway"},
			},
			Adjacency: AdjacencyRules{
				Preferred: []Rule{
					{Kind: KindNearSpace, Target: "reception", MaxDistance: intp(180), Weight: 1},
				},
				Separation: []Rule{
					{Kind: KindSeparate, Target: "mechanical", Hard: true},
					{Kind: KindSeparate, Target: "lab", Hard: true},
				},
			},
			Clearances: Clearances{ADA: ada},
		},
		{
			Type:        "patientRestroom",
			Category:    CategoryPublic,
			Description: "Patient restroom; entered from circulation, never through another room.",
			Size: SizeRule{
				Min: &Dims{Width: 99, Length: 93},
			},
			EntryTiers: []EntryTier{{MinEntries: 1, MaxEntries: intp(1)}},
			EntryRules: []Rule{
				{Kind: KindEntryNotFrom, Target: "patientLounge"},
			},
			Adjacency: AdjacencyRules{
				Preferred: []Rule{
					{Kind: KindNearSpace, Target: "patientLounge", MaxDistance: intp(240), Weight: 1},
				},
				Separation: []Rule{
					{Kind: KindSeparate, Target: "doctorOffice", Hard: true},
				},
			},
			Clearances:  Clearances{ADA: ada},
			Scalability: "count driven by building area and occupancy",
		},
		{
			Type:        "doctorOffice",
			Category:    CategoryPrivate,
			Description: "Private or shared doctor office.",
			Size: SizeRule{
				Models: []DimensionModel{
					{Label: "single", Width: intp(96), Length: intp(96)},
					{Label: "twoThree", TreatmentRoomsMin: intp(7), Width: intp(120), Length: intp(156)},
				},
			},
			EntryTiers: []EntryTier{{MinEntries: 1, MaxEntries: intp(1)}},
			EntryRules: []Rule{
				{Kind: KindEntryFrom, Target: "clinicalCorridor", Hard: true},
				{Kind: KindEntryNotFrom, Target: "patientLounge", Hard: true},
				{Kind: KindEntryNotFrom, Target: "reception", Hard: true},
			},
			Adjacency: AdjacencyRules{
				Preferred: []Rule{
					{Kind: KindNearSpace, Target: "consult", Weight: 1},
				},
				Separation: []Rule{
					{Kind: KindSeparate, Target: "staffLounge", Hard: true},
					{Kind: KindSeparate, Target: "patientLounge", Hard: true},
					{Kind: KindSeparate, Target: "reception", Hard: true},
				},
			},
			Visibility: []Rule{
				{Kind: KindAvoidVisibility, Group: CategoryPublic, Weight: 2},
			},
			CenterBias: &CenterBias{Weight: 1},
			Clearances: Clearances{ADA: ada},
		},
		{
			Type:        "patientLounge",
			Category:    CategoryPublic,
			Description: "Waiting zone at front of house; scaled by treatment-room count.",
			Size: SizeRule{
				Min: &Dims{Width: 144, Length: 144},
			},
			EntryTiers: []EntryTier{{MinEntries: 1, MaxEntries: intp(2)}},
			EntryRules: []Rule{
				{Kind: KindEntryFrom, Target: "reception", Hard: true},
				{Kind: KindEntryNotFrom, Target: "clinicalCorridor", Hard: true},
			},
			Adjacency: AdjacencyRules{
				Direct: []Rule{
					{Kind: KindAdjacent, Target: "reception", Hard: true},
				},
				Preferred: []Rule{
					{Kind: KindNearSpace, Target: "patientRestroom", MaxDistance: intp(240), Weight: 1},
				},
				Separation: []Rule{
					{Kind: KindSeparate, Target: "staffLounge", Hard: true},
					{Kind: KindSeparate, Target: "sterilization", Hard: true},
					{Kind: KindSeparate, Target: "lab", Hard: true},
					{Kind: KindSeparate, Target: "mechanical", Hard: true},
				},
			},
			Visibility: []Rule{
				{Kind: KindRequireVisibility, Target: "reception", Hard: true},
				{Kind: KindAvoidVisibility, Target: "clinicalCorridor", Weight: 3},
			},
			Clearances:  Clearances{ADA: ada},
			Scalability: "1.5 seats per treatment room",
		},
		{
			Type:        "reception",
			Category:    CategoryPublic,
			Description: "Reception and check-in desk zone.",
			Size: SizeRule{
				Min: &Dims{Width: 96, Length: 120},
			},
			EntryTiers: []EntryTier{{MinEntries: 1, MaxEntries: intp(2)}},
			Adjacency: AdjacencyRules{
				Direct: []Rule{
					{Kind: KindAdjacent, Target: "patientLounge", Hard: true},
				},
				Separation: []Rule{
					{Kind: KindSeparate, Target: "treatmentRoom", Hard: true},
					{Kind: KindSeparate, Target: "sterilization", Hard: true},
				},
			},
			Clearances: Clearances{ADA: ada},
		},
		{
			Type:        "businessOffice",
			Category:    CategoryPrivate,
			Description: "Back-of-reception office for billing and admin.",
			Size: SizeRule{
				Models: []DimensionModel{
					{Label: "small", TreatmentRoomsMax: intp(6), Width: intp(90), Length: intp(96)},
					{Label: "medium", TreatmentRoomsMin: intp(7), TreatmentRoomsMax: intp(10), Width: intp(114), Length: intp(96)},
					{Label: "large", TreatmentRoomsMin: intp(11), Width: intp(114), Length: intp(144)},
				},
			},
			EntryTiers: []EntryTier{{MinEntries: 1, MaxEntries: intp(2)}},
			EntryRules: []Rule{
				{Kind: KindEntryWithinDistance, Target: "reception", MaxDistance: intp(120), Hard: true},
				{Kind: KindEntryNotFrom, Target: "patientRestroom", Hard: true},
			},
			Adjacency: AdjacencyRules{
				Preferred: []Rule{
					{Kind: KindAdjacent, Target: "reception", Weight: 1},
				},
				Separation: []Rule{
					{Kind: KindSeparate, Target: "treatmentRoom", Hard: true},
					{Kind: KindSeparate, Target: "sterilization", Hard: true},
					{Kind: KindSeparate, Target: "lab", Hard: true},
					{Kind: KindSeparate, Target: "patientRestroom", Hard: true},
				},
			},
			Visibility: []Rule{
				{Kind: KindRequireVisibility, Target: "reception", Weight: 1},
				{Kind: KindAvoidVisibility, Group: CategoryPublic, Weight: 2},
			},
			Clearances: Clearances{
				ADA:   ada,
				Ideal: []Rule{{Kind: KindNotWithinDistance, Target: "crossoverHallway", MinDistance: intp(36), Weight: 1}},
			},
		},
		{
			Type:        "staffLounge",
			Category:    CategoryPrivate,
			Description: "Staff-only lounge, concealed from patient zones.",
			Size: SizeRule{
				Min: &Dims{Width: 120, Length: 144},
			},
			EntryTiers: []EntryTier{{MinEntries: 1, MaxEntries: intp(2)}},
			EntryRules: []Rule{
				{Kind: KindEntryNotFrom, Target: "patientLounge", Hard: true},
			},
			Adjacency: AdjacencyRules{
				Separation: []Rule{
					{Kind: KindSeparate, Target: "patientLounge", Hard: true},
					{Kind: KindSeparate, Target: "reception", Hard: true},
				},
			},
			Visibility: []Rule{
				{Kind: KindAvoidVisibility, Group: CategoryPublic, Weight: 2},
			},
			Clearances: Clearances{ADA: ada},
		},
		{
			Type:        "crossoverHallway",
			Category:    CategoryClinical,
			Description: "Connector between parallel clinical corridors.",
			Size: SizeRule{
				Min: &Dims{Width: 60, Length: 120},
				Max: &Dims{Width: 72, Length: 600},
			},
			EntryTiers: []EntryTier{{MinEntries: 2}},
			EntryRules: []Rule{
				{Kind: KindEntryFrom, Target: "clinicalCorridor", Hard: true},
			},
			Adjacency: AdjacencyRules{
				Direct: []Rule{
					{Kind: KindAdjacent, Target: "clinicalCorridor", Hard: true},
				},
				Separation: []Rule{
					{Kind: KindSeparate, Target: "patientLounge", Hard: true},
					{Kind: KindSeparate, Target: "reception", Hard: true},
					{Kind: KindSeparate, Target: "staffLounge", Hard: true},
				},
			},
			Visibility: []Rule{
				{Kind: KindAvoidVisibility, Group: CategoryPublic, Weight: 2},
				{Kind: KindAvoidVisibility, Target: "sterilization", Weight: 1},
			},
		},
		{
			Type:        "mechanical",
			Category:    CategoryPrivate,
			Description: "Mechanical room; rules largely unresolved.",
			Size: SizeRule{
				Min: &Dims{Width: 60, Length: 60},
			},
			EntryTiers: []EntryTier{{MinEntries: 1, MaxEntries: intp(1)}},
			Adjacency: AdjacencyRules{
				Separation: []Rule{
					{Kind: KindSeparate, Target: "patientLounge", Hard: true},
					{Kind: KindSeparate, Target: "treatmentRoom", Hard: true},
				},
			},
			Scalability: "TBD",
		},
	}
}
