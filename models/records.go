// ABOUTME: Stored record shapes with snake_case fields as the backend keeps them
// ABOUTME: Nested values are JSON text, flags are 0/1 integers, optional text is nullable
package models

type ClientRecord struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Company      string  `json:"company"`
	Email        string  `json:"email"`
	Phone        string  `json:"phone"`
	Status       string  `json:"status"`
	Services     string  `json:"services"`
	MonthlyValue float64 `json:"monthly_value"`
	JoinedDate   string  `json:"joined_date"`
	UserID       string  `json:"user_id"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

type SocialCampaignRecord struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	ClientID   string  `json:"client_id"`
	Platform   string  `json:"platform"`
	Status     string  `json:"status"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	Budget     float64 `json:"budget"`
	Reach      int     `json:"reach"`
	Engagement int     `json:"engagement"`
	UserID     string  `json:"user_id"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

type UpworkProjectRecord struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Client        string  `json:"client"`
	Budget        float64 `json:"budget"`
	Status        string  `json:"status"`
	SubmittedDate string  `json:"submitted_date"`
	Deadline      *string `json:"deadline"`
	Description   string  `json:"description"`
	Skills        string  `json:"skills"`
	UserID        string  `json:"user_id"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

type LinkedInContactRecord struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Title          string  `json:"title"`
	Company        string  `json:"company"`
	Status         string  `json:"status"`
	ConnectionDate *string `json:"connection_date"`
	LastMessage    *string `json:"last_message"`
	Notes          string  `json:"notes"`
	UserID         string  `json:"user_id"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

// UserRecord has no owner column: the team roster is shared.
type UserRecord struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	Name        string  `json:"name"`
	Role        string  `json:"role"`
	AvatarURL   *string `json:"avatar_url"`
	Department  *string `json:"department"`
	Permissions string  `json:"permissions"`
	IsActive    int     `json:"is_active"`
	LastLogin   *string `json:"last_login"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

type PipelineStageRecord struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Position  int    `json:"position"`
	Color     string `json:"color"`
	IsActive  int    `json:"is_active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type DealRecord struct {
	ID                string  `json:"id"`
	UserID            string  `json:"user_id"`
	ClientID          *string `json:"client_id"`
	Title             string  `json:"title"`
	Description       *string `json:"description"`
	Value             float64 `json:"value"`
	Currency          string  `json:"currency"`
	StageID           *string `json:"stage_id"`
	Probability       int     `json:"probability"`
	ExpectedCloseDate *string `json:"expected_close_date"`
	ActualCloseDate   *string `json:"actual_close_date"`
	Source            *string `json:"source"`
	AssignedTo        *string `json:"assigned_to"`
	Tags              string  `json:"tags"`
	CustomFields      string  `json:"custom_fields"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
}

type ActivityRecord struct {
	ID            string  `json:"id"`
	UserID        string  `json:"user_id"`
	Type          string  `json:"type"`
	Title         string  `json:"title"`
	Description   *string `json:"description"`
	RelatedToType *string `json:"related_to_type"`
	RelatedToID   *string `json:"related_to_id"`
	AssignedTo    *string `json:"assigned_to"`
	DueDate       *string `json:"due_date"`
	CompletedAt   *string `json:"completed_at"`
	Priority      string  `json:"priority"`
	Status        string  `json:"status"`
	Metadata      *string `json:"metadata"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

type EmailSequenceRecord struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	TriggerType string  `json:"trigger_type"`
	IsActive    int     `json:"is_active"`
	Steps       string  `json:"steps"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// SequenceEnrollmentRecord carries the owner of its sequence in user_id so the
// owner filter applies to enrollments like every other owned collection.
type SequenceEnrollmentRecord struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	SequenceID  string  `json:"sequence_id"`
	ContactID   string  `json:"contact_id"`
	CurrentStep int     `json:"current_step"`
	Status      string  `json:"status"`
	EnrolledAt  string  `json:"enrolled_at"`
	CompletedAt *string `json:"completed_at"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

type GoalRecord struct {
	ID           string  `json:"id"`
	UserID       string  `json:"user_id"`
	AssignedTo   *string `json:"assigned_to"`
	Type         string  `json:"type"`
	Title        string  `json:"title"`
	TargetValue  float64 `json:"target_value"`
	CurrentValue float64 `json:"current_value"`
	Period       string  `json:"period"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	Status       string  `json:"status"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

type LeadListRecord struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Niche      string `json:"niche"`
	Leads      string `json:"leads"`
	TotalLeads int    `json:"total_leads"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}
