// ABOUTME: Partial update types, one per entity, listing only mutable fields
// ABOUTME: Fields() turns a patch into the snake_case partial sent to the gateway
package models

import (
	"encoding/json"
	"time"
)

const (
	// TimestampLayout matches the millisecond ISO-8601 text the backend stores.
	TimestampLayout = "2006-01-02T15:04:05.000Z"
	DateLayout      = "2006-01-02"
)

// FormatTime renders t in the stored timestamp format.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Fields is a snake_case partial record.
type Fields map[string]any

func (f Fields) text(key string, v *string) {
	if v != nil {
		f[key] = *v
	}
}

// nullable stores nil for an empty string so optional columns are cleared.
func (f Fields) nullable(key string, v *string) {
	if v == nil {
		return
	}
	if *v == "" {
		f[key] = nil
		return
	}
	f[key] = *v
}

func (f Fields) number(key string, v *float64) {
	if v != nil {
		f[key] = *v
	}
}

func (f Fields) integer(key string, v *int) {
	if v != nil {
		f[key] = *v
	}
}

func (f Fields) flag(key string, v *bool) {
	if v == nil {
		return
	}
	if *v {
		f[key] = 1
	} else {
		f[key] = 0
	}
}

func (f Fields) timestamp(key string, v **time.Time) {
	if v == nil {
		return
	}
	if *v == nil {
		f[key] = nil
		return
	}
	f[key] = FormatTime(**v)
}

func (f Fields) encoded(key string, v any, empty string) {
	data, err := json.Marshal(v)
	if err != nil || string(data) == "null" {
		f[key] = empty
		return
	}
	f[key] = string(data)
}

func stamp(f Fields, now time.Time) Fields {
	f["updated_at"] = FormatTime(now)
	return f
}

type ClientPatch struct {
	Name         *string
	Company      *string
	Email        *string
	Phone        *string
	Status       *ClientStatus
	Services     *[]string
	MonthlyValue *float64
	JoinedDate   *string
}

func (p ClientPatch) Fields(now time.Time) Fields {
	f := Fields{}
	f.text("name", p.Name)
	f.text("company", p.Company)
	f.text("email", p.Email)
	f.text("phone", p.Phone)
	if p.Status != nil {
		f["status"] = string(*p.Status)
	}
	if p.Services != nil {
		f.encoded("services", *p.Services, "[]")
	}
	f.number("monthly_value", p.MonthlyValue)
	f.text("joined_date", p.JoinedDate)
	return stamp(f, now)
}

type SocialCampaignPatch struct {
	Title      *string
	ClientID   *string
	Platform   *CampaignPlatform
	Status     *CampaignStatus
	StartDate  *string
	EndDate    *string
	Budget     *float64
	Reach      *int
	Engagement *int
}

func (p SocialCampaignPatch) Fields(now time.Time) Fields {
	f := Fields{}
	f.text("title", p.Title)
	f.text("client_id", p.ClientID)
	if p.Platform != nil {
		f["platform"] = string(*p.Platform)
	}
	if p.Status != nil {
		f["status"] = string(*p.Status)
	}
	f.text("start_date", p.StartDate)
	f.text("end_date", p.EndDate)
	f.number("budget", p.Budget)
	f.integer("reach", p.Reach)
	f.integer("engagement", p.Engagement)
	return stamp(f, now)
}

type UpworkProjectPatch struct {
	Title         *string
	Client        *string
	Budget        *float64
	Status        *ProjectStatus
	SubmittedDate *string
	Deadline      *string
	Description   *string
	Skills        *[]string
}

func (p UpworkProjectPatch) Fields(now time.Time) Fields {
	f := Fields{}
	f.text("title", p.Title)
	f.text("client", p.Client)
	f.number("budget", p.Budget)
	if p.Status != nil {
		f["status"] = string(*p.Status)
	}
	f.text("submitted_date", p.SubmittedDate)
	f.nullable("deadline", p.Deadline)
	f.text("description", p.Description)
	if p.Skills != nil {
		f.encoded("skills", *p.Skills, "[]")
	}
	return stamp(f, now)
}

type LinkedInContactPatch struct {
	Name           *string
	Title          *string
	Company        *string
	Status         *ContactStatus
	ConnectionDate *string
	LastMessage    *string
	Notes          *string
}

func (p LinkedInContactPatch) Fields(now time.Time) Fields {
	f := Fields{}
	f.text("name", p.Name)
	f.text("title", p.Title)
	f.text("company", p.Company)
	if p.Status != nil {
		f["status"] = string(*p.Status)
	}
	f.nullable("connection_date", p.ConnectionDate)
	f.nullable("last_message", p.LastMessage)
	f.text("notes", p.Notes)
	return stamp(f, now)
}

type UserPatch struct {
	Name        *string
	Role        *UserRole
	AvatarURL   *string
	Department  *string
	Permissions *[]string
	IsActive    *bool
	LastLogin   **time.Time
}

func (p UserPatch) Fields(now time.Time) Fields {
	f := Fields{}
	f.text("name", p.Name)
	if p.Role != nil {
		f["role"] = string(*p.Role)
	}
	f.nullable("avatar_url", p.AvatarURL)
	f.nullable("department", p.Department)
	if p.Permissions != nil {
		f.encoded("permissions", *p.Permissions, "[]")
	}
	f.flag("is_active", p.IsActive)
	f.timestamp("last_login", p.LastLogin)
	return stamp(f, now)
}

type PipelineStagePatch struct {
	Name     *string
	Position *int
	Color    *string
	IsActive *bool
}

func (p PipelineStagePatch) Fields(now time.Time) Fields {
	f := Fields{}
	f.text("name", p.Name)
	f.integer("position", p.Position)
	f.text("color", p.Color)
	f.flag("is_active", p.IsActive)
	return stamp(f, now)
}

type DealPatch struct {
	ClientID          *string
	Title             *string
	Description       *string
	Value             *float64
	Currency          *string
	StageID           *string
	Probability       *int
	ExpectedCloseDate *string
	ActualCloseDate   *string
	Source            *string
	AssignedTo        *string
	Tags              *[]string
	CustomFields      *map[string]any
}

func (p DealPatch) Fields(now time.Time) Fields {
	f := Fields{}
	f.nullable("client_id", p.ClientID)
	f.text("title", p.Title)
	f.nullable("description", p.Description)
	f.number("value", p.Value)
	f.text("currency", p.Currency)
	f.nullable("stage_id", p.StageID)
	f.integer("probability", p.Probability)
	f.nullable("expected_close_date", p.ExpectedCloseDate)
	f.nullable("actual_close_date", p.ActualCloseDate)
	f.nullable("source", p.Source)
	f.nullable("assigned_to", p.AssignedTo)
	if p.Tags != nil {
		f.encoded("tags", *p.Tags, "[]")
	}
	if p.CustomFields != nil {
		f.encoded("custom_fields", *p.CustomFields, "{}")
	}
	return stamp(f, now)
}

type ActivityPatch struct {
	Type          *ActivityType
	Title         *string
	Description   *string
	RelatedToType *string
	RelatedToID   *string
	AssignedTo    *string
	DueDate       **time.Time
	CompletedAt   **time.Time
	Priority      *ActivityPriority
	Status        *ActivityStatus
	Metadata      *map[string]any
}

func (p ActivityPatch) Fields(now time.Time) Fields {
	f := Fields{}
	if p.Type != nil {
		f["type"] = string(*p.Type)
	}
	f.text("title", p.Title)
	f.nullable("description", p.Description)
	f.nullable("related_to_type", p.RelatedToType)
	f.nullable("related_to_id", p.RelatedToID)
	f.nullable("assigned_to", p.AssignedTo)
	f.timestamp("due_date", p.DueDate)
	f.timestamp("completed_at", p.CompletedAt)
	if p.Priority != nil {
		f["priority"] = string(*p.Priority)
	}
	if p.Status != nil {
		f["status"] = string(*p.Status)
	}
	if p.Metadata != nil {
		f.encoded("metadata", *p.Metadata, "{}")
	}
	return stamp(f, now)
}

type EmailSequencePatch struct {
	Name        *string
	Description *string
	TriggerType *TriggerType
	IsActive    *bool
	Steps       *[]EmailStep
}

func (p EmailSequencePatch) Fields(now time.Time) Fields {
	f := Fields{}
	f.text("name", p.Name)
	f.nullable("description", p.Description)
	if p.TriggerType != nil {
		f["trigger_type"] = string(*p.TriggerType)
	}
	f.flag("is_active", p.IsActive)
	if p.Steps != nil {
		f.encoded("steps", *p.Steps, "[]")
	}
	return stamp(f, now)
}

type SequenceEnrollmentPatch struct {
	CurrentStep *int
	Status      *EnrollmentStatus
	CompletedAt **time.Time
}

func (p SequenceEnrollmentPatch) Fields(now time.Time) Fields {
	f := Fields{}
	f.integer("current_step", p.CurrentStep)
	if p.Status != nil {
		f["status"] = string(*p.Status)
	}
	f.timestamp("completed_at", p.CompletedAt)
	return stamp(f, now)
}

type GoalPatch struct {
	AssignedTo   *string
	Type         *GoalType
	Title        *string
	TargetValue  *float64
	CurrentValue *float64
	Period       *GoalPeriod
	StartDate    *string
	EndDate      *string
	Status       *GoalStatus
}

func (p GoalPatch) Fields(now time.Time) Fields {
	f := Fields{}
	f.nullable("assigned_to", p.AssignedTo)
	if p.Type != nil {
		f["type"] = string(*p.Type)
	}
	f.text("title", p.Title)
	f.number("target_value", p.TargetValue)
	f.number("current_value", p.CurrentValue)
	if p.Period != nil {
		f["period"] = string(*p.Period)
	}
	f.text("start_date", p.StartDate)
	f.text("end_date", p.EndDate)
	if p.Status != nil {
		f["status"] = string(*p.Status)
	}
	return stamp(f, now)
}

// Ptr returns a pointer to v. Handy for building patches.
func Ptr[T any](v T) *T {
	return &v
}
