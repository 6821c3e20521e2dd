// ABOUTME: Default pipeline stages shared by every user
// ABOUTME: Analytics treats the Closed Won stage as the win signal
package models

// Ids of the seeded stages that analytics reads.
const (
	WonStageID  = "stage_5"
	LostStageID = "stage_6"
)

// DefaultStages are the shared pipeline columns owned by the system user.
var DefaultStages = []PipelineStage{
	{ID: "stage_1", Name: "Lead", Position: 1, Color: "#6b7280", IsActive: true},
	{ID: "stage_2", Name: "Qualified", Position: 2, Color: "#3b82f6", IsActive: true},
	{ID: "stage_3", Name: "Proposal", Position: 3, Color: "#8b5cf6", IsActive: true},
	{ID: "stage_4", Name: "Negotiation", Position: 4, Color: "#f59e0b", IsActive: true},
	{ID: WonStageID, Name: "Closed Won", Position: 5, Color: "#10b981", IsActive: true},
	{ID: LostStageID, Name: "Closed Lost", Position: 6, Color: "#ef4444", IsActive: true},
}
