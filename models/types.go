// ABOUTME: View models for agency CRM entities
// ABOUTME: camelCase shapes consumed by views, analytics, the API and the TUI
package models

import (
	"time"
)

// Principal is the authenticated user. Its ID owns every record it creates.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type Client struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Company      string       `json:"company"`
	Email        string       `json:"email"`
	Phone        string       `json:"phone"`
	Status       ClientStatus `json:"status"`
	Services     []string     `json:"services"`
	MonthlyValue float64      `json:"monthlyValue"`
	JoinedDate   string       `json:"joinedDate"`
	UserID       string       `json:"userId"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

type SocialCampaign struct {
	ID         string           `json:"id"`
	Title      string           `json:"title"`
	ClientID   string           `json:"clientId"`
	Platform   CampaignPlatform `json:"platform"`
	Status     CampaignStatus   `json:"status"`
	StartDate  string           `json:"startDate"`
	EndDate    string           `json:"endDate"`
	Budget     float64          `json:"budget"`
	Reach      int              `json:"reach"`
	Engagement int              `json:"engagement"`
	UserID     string           `json:"userId"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

// ClientRef is a weak reference to the client the campaign runs for.
func (c SocialCampaign) ClientRef() (Ref, bool) {
	return NewRef(RefClient, c.ClientID)
}

type UpworkProject struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Client        string        `json:"client"`
	Budget        float64       `json:"budget"`
	Status        ProjectStatus `json:"status"`
	SubmittedDate string        `json:"submittedDate"`
	Deadline      string        `json:"deadline,omitempty"`
	Description   string        `json:"description"`
	Skills        []string      `json:"skills"`
	UserID        string        `json:"userId"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

type LinkedInContact struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Title          string        `json:"title"`
	Company        string        `json:"company"`
	Status         ContactStatus `json:"status"`
	ConnectionDate string        `json:"connectionDate,omitempty"`
	LastMessage    string        `json:"lastMessage,omitempty"`
	Notes          string        `json:"notes"`
	UserID         string        `json:"userId"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

type User struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        UserRole   `json:"role"`
	AvatarURL   string     `json:"avatarUrl,omitempty"`
	Department  string     `json:"department,omitempty"`
	Permissions []string   `json:"permissions"`
	IsActive    bool       `json:"isActive"`
	LastLogin   *time.Time `json:"lastLogin,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type PipelineStage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Position  int       `json:"position"`
	Color     string    `json:"color"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Deal struct {
	ID                string         `json:"id"`
	UserID            string         `json:"userId"`
	ClientID          string         `json:"clientId,omitempty"`
	Title             string         `json:"title"`
	Description       string         `json:"description,omitempty"`
	Value             float64        `json:"value"`
	Currency          string         `json:"currency"`
	StageID           string         `json:"stageId,omitempty"`
	Probability       int            `json:"probability"`
	ExpectedCloseDate string         `json:"expectedCloseDate,omitempty"`
	ActualCloseDate   string         `json:"actualCloseDate,omitempty"`
	Source            string         `json:"source,omitempty"`
	AssignedTo        string         `json:"assignedTo,omitempty"`
	Tags              []string       `json:"tags"`
	CustomFields      map[string]any `json:"customFields"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

// WeightedValue is the deal value discounted by its win probability.
func (d Deal) WeightedValue() float64 {
	return d.Value * float64(d.Probability) / 100
}

func (d Deal) ClientRef() (Ref, bool) {
	return NewRef(RefClient, d.ClientID)
}

func (d Deal) StageRef() (Ref, bool) {
	return NewRef(RefStage, d.StageID)
}

type Activity struct {
	ID            string           `json:"id"`
	UserID        string           `json:"userId"`
	Type          ActivityType     `json:"type"`
	Title         string           `json:"title"`
	Description   string           `json:"description,omitempty"`
	RelatedToType string           `json:"relatedToType,omitempty"`
	RelatedToID   string           `json:"relatedToId,omitempty"`
	AssignedTo    string           `json:"assignedTo,omitempty"`
	DueDate       *time.Time       `json:"dueDate,omitempty"`
	CompletedAt   *time.Time       `json:"completedAt,omitempty"`
	Priority      ActivityPriority `json:"priority"`
	Status        ActivityStatus   `json:"status"`
	Metadata      map[string]any   `json:"metadata"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// Related returns the entity this activity is attached to, if any.
func (a Activity) Related() (Ref, bool) {
	return NewRef(RefKind(a.RelatedToType), a.RelatedToID)
}

// Overdue reports whether the activity is past due and still open.
func (a Activity) Overdue(now time.Time) bool {
	return a.DueDate != nil && a.DueDate.Before(now) && a.Status != ActivityCompleted
}

type EmailSequence struct {
	ID          string      `json:"id"`
	UserID      string      `json:"userId"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	TriggerType TriggerType `json:"triggerType"`
	IsActive    bool        `json:"isActive"`
	Steps       []EmailStep `json:"steps"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type EmailStep struct {
	ID         string         `json:"id"`
	Subject    string         `json:"subject"`
	Content    string         `json:"content"`
	Delay      int            `json:"delay"` // hours
	Conditions map[string]any `json:"conditions,omitempty"`
}

type SequenceEnrollment struct {
	ID          string           `json:"id"`
	SequenceID  string           `json:"sequenceId"`
	ContactID   string           `json:"contactId"`
	CurrentStep int              `json:"currentStep"`
	Status      EnrollmentStatus `json:"status"`
	EnrolledAt  time.Time        `json:"enrolledAt"`
	CompletedAt *time.Time       `json:"completedAt,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

func (e SequenceEnrollment) ContactRef() (Ref, bool) {
	return NewRef(RefContact, e.ContactID)
}

type Goal struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	AssignedTo   string     `json:"assignedTo,omitempty"`
	Type         GoalType   `json:"type"`
	Title        string     `json:"title"`
	TargetValue  float64    `json:"targetValue"`
	CurrentValue float64    `json:"currentValue"`
	Period       GoalPeriod `json:"period"`
	StartDate    string     `json:"startDate"`
	EndDate      string     `json:"endDate"`
	Status       GoalStatus `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Progress is current/target as a percentage, 0 when there is no target.
func (g Goal) Progress() float64 {
	if g.TargetValue == 0 {
		return 0
	}
	return g.CurrentValue / g.TargetValue * 100
}

// Lead is one prospect produced by the lead generator.
type Lead struct {
	ID                string `json:"id"`
	CompanyName       string `json:"companyName"`
	ContactName       string `json:"contactName"`
	ContactEmail      string `json:"contactEmail"`
	ContactTitle      string `json:"contactTitle"`
	PersonalizedIntro string `json:"personalizedIntro"`
	Industry          string `json:"industry"`
	CompanySize       string `json:"companySize"`
	Website           string `json:"website,omitempty"`
}

// LeadList is a saved batch of generated leads for one niche.
type LeadList struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Niche      string    `json:"niche"`
	Leads      []Lead    `json:"leads"`
	TotalLeads int       `json:"totalLeads"`
	CreatedAt  time.Time `json:"createdAt"`
}
