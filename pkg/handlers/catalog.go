package handlers

import "github.com/careroute/concierge/pkg/tools"

// Tool names advertised to the reasoning engine.
const (
	ToolCreateJourney       = "create_journey"
	ToolSearchFacilities    = "search_facilities"
	ToolAddToShortlist      = "add_facility_to_shortlist"
	ToolRemoveFromShortlist = "remove_facility_from_shortlist"
	ToolGenerateComparison  = "generate_comparison"
	ToolFacilityDetails     = "get_facility_details"
	ToolAddJourneyNote      = "add_journey_note"
	ToolShareJourney        = "share_journey"
	ToolInviteCollaborator  = "invite_collaborator"
	ToolContactFacility     = "contact_facility"
	ToolExportJourneyPDF    = "export_journey_pdf"
	ToolJourneySummary      = "get_journey_summary"
)

var facilityNameField = tools.Field{
	Name:        "facility_name",
	Type:        tools.FieldString,
	Required:    true,
	Description: "Name (or part of the name) of the facility, as shown in search results",
}

// Catalog returns the tool definitions in the order they are advertised.
func Catalog() []tools.Definition {
	return []tools.Definition{
		{
			Name:        ToolCreateJourney,
			Description: "Start a new treatment journey for the signed-in user. Call this once the user has told you the procedure they need and roughly when.",
			Fields: []tools.Field{
				{Name: "procedure", Type: tools.FieldString, Required: true, Description: "Procedure the user is researching, e.g. \"Knee Replacement\""},
				{Name: "timeline", Type: tools.FieldString, Required: true, Description: "When the user hopes to travel, in their words"},
				{Name: "budgetMin", Type: tools.FieldNumber, Description: "Lower bound of the budget, if stated"},
				{Name: "budgetMax", Type: tools.FieldNumber, Description: "Upper bound of the budget, if stated"},
				{Name: "budgetPreference", Type: tools.FieldString, Enum: []string{"budget", "mid-range", "premium"}, Description: "Price tier the user prefers, if stated"},
			},
		},
		{
			Name:        ToolSearchFacilities,
			Description: "Search accredited facilities, best rated first. Results are shown to the user as cards.",
			Fields: []tools.Field{
				{Name: "procedure", Type: tools.FieldString, Description: "Procedure to match against each facility's specialties"},
				{Name: "country", Type: tools.FieldString, Description: "Destination country"},
				{Name: "limit", Type: tools.FieldInteger, Description: "Maximum number of results (1-10, default 5)"},
			},
		},
		{
			Name:        ToolAddToShortlist,
			Description: "Add a facility to the shortlist of the current journey.",
			Fields:      []tools.Field{facilityNameField},
		},
		{
			Name:        ToolRemoveFromShortlist,
			Description: "Remove a facility from the shortlist of the current journey.",
			Fields:      []tools.Field{facilityNameField},
		},
		{
			Name:        ToolGenerateComparison,
			Description: "Compare every facility on the current journey's shortlist side by side.",
		},
		{
			Name:        ToolFacilityDetails,
			Description: "Show detailed information about one facility.",
			Fields:      []tools.Field{facilityNameField},
		},
		{
			Name:        ToolAddJourneyNote,
			Description: "Attach a free-text note to the current journey.",
			Fields: []tools.Field{
				{Name: "note", Type: tools.FieldString, Required: true, Description: "Note text"},
			},
		},
		{
			Name:        ToolShareJourney,
			Description: "Share a read-only view of the current journey by email.",
			Fields: []tools.Field{
				{Name: "email", Type: tools.FieldString, Required: true, Description: "Recipient email address"},
			},
		},
		{
			Name:        ToolInviteCollaborator,
			Description: "Invite a family member or friend to plan the journey together.",
			Fields: []tools.Field{
				{Name: "email", Type: tools.FieldString, Required: true, Description: "Invitee email address"},
				{Name: "role", Type: tools.FieldString, Enum: []string{"viewer", "editor"}, Description: "Access level for the invitee"},
			},
		},
		{
			Name:        ToolContactFacility,
			Description: "Send an enquiry to a facility on the user's behalf.",
			Fields: []tools.Field{
				facilityNameField,
				{Name: "message", Type: tools.FieldString, Required: true, Description: "Enquiry text"},
			},
		},
		{
			Name:        ToolExportJourneyPDF,
			Description: "Export the current journey, shortlist and comparison as a PDF.",
		},
		{
			Name:        ToolJourneySummary,
			Description: "Summarise the current journey: procedure, budget, timeline and shortlist.",
		},
	}
}
