// ABOUTME: Closed value sets for entity status, type and role fields
// ABOUTME: Each set is a string type with its constants and a Valid check
package models

type ClientStatus string

const (
	ClientActive   ClientStatus = "active"
	ClientInactive ClientStatus = "inactive"
	ClientProspect ClientStatus = "prospect"
)

func (s ClientStatus) Valid() bool {
	switch s {
	case ClientActive, ClientInactive, ClientProspect:
		return true
	}
	return false
}

type CampaignPlatform string

const (
	PlatformInstagram CampaignPlatform = "instagram"
	PlatformFacebook  CampaignPlatform = "facebook"
	PlatformTwitter   CampaignPlatform = "twitter"
	PlatformLinkedIn  CampaignPlatform = "linkedin"
)

func (p CampaignPlatform) Valid() bool {
	switch p {
	case PlatformInstagram, PlatformFacebook, PlatformTwitter, PlatformLinkedIn:
		return true
	}
	return false
}

type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignScheduled CampaignStatus = "scheduled"
	CampaignActive    CampaignStatus = "active"
	CampaignCompleted CampaignStatus = "completed"
)

func (s CampaignStatus) Valid() bool {
	switch s {
	case CampaignDraft, CampaignScheduled, CampaignActive, CampaignCompleted:
		return true
	}
	return false
}

type ProjectStatus string

const (
	ProjectProposal  ProjectStatus = "proposal"
	ProjectInterview ProjectStatus = "interview"
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectDeclined  ProjectStatus = "declined"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectProposal, ProjectInterview, ProjectActive, ProjectCompleted, ProjectDeclined:
		return true
	}
	return false
}

type ContactStatus string

const (
	ContactPending   ContactStatus = "pending"
	ContactConnected ContactStatus = "connected"
	ContactMessaged  ContactStatus = "messaged"
	ContactResponded ContactStatus = "responded"
	ContactConverted ContactStatus = "converted"
)

func (s ContactStatus) Valid() bool {
	switch s {
	case ContactPending, ContactConnected, ContactMessaged, ContactResponded, ContactConverted:
		return true
	}
	return false
}

type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
	RoleMember  UserRole = "member"
	RoleViewer  UserRole = "viewer"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleMember, RoleViewer:
		return true
	}
	return false
}

type ActivityType string

const (
	ActivityCall         ActivityType = "call"
	ActivityEmail        ActivityType = "email"
	ActivityMeeting      ActivityType = "meeting"
	ActivityNote         ActivityType = "note"
	ActivityTask         ActivityType = "task"
	ActivityDealUpdate   ActivityType = "deal_update"
	ActivityClientUpdate ActivityType = "client_update"
)

// TrackedActivityTypes are the types reported in per-type analytics.
var TrackedActivityTypes = []ActivityType{ActivityCall, ActivityEmail, ActivityMeeting, ActivityNote, ActivityTask}

func (t ActivityType) Valid() bool {
	switch t {
	case ActivityCall, ActivityEmail, ActivityMeeting, ActivityNote, ActivityTask, ActivityDealUpdate, ActivityClientUpdate:
		return true
	}
	return false
}

type ActivityPriority string

const (
	PriorityLow    ActivityPriority = "low"
	PriorityMedium ActivityPriority = "medium"
	PriorityHigh   ActivityPriority = "high"
	PriorityUrgent ActivityPriority = "urgent"
)

func (p ActivityPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type ActivityStatus string

const (
	ActivityPending    ActivityStatus = "pending"
	ActivityInProgress ActivityStatus = "in_progress"
	ActivityCompleted  ActivityStatus = "completed"
	ActivityCancelled  ActivityStatus = "cancelled"
)

func (s ActivityStatus) Valid() bool {
	switch s {
	case ActivityPending, ActivityInProgress, ActivityCompleted, ActivityCancelled:
		return true
	}
	return false
}

type TriggerType string

const (
	TriggerManual      TriggerType = "manual"
	TriggerNewLead     TriggerType = "new_lead"
	TriggerStageChange TriggerType = "stage_change"
	TriggerDateBased   TriggerType = "date_based"
)

func (t TriggerType) Valid() bool {
	switch t {
	case TriggerManual, TriggerNewLead, TriggerStageChange, TriggerDateBased:
		return true
	}
	return false
}

type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentPaused    EnrollmentStatus = "paused"
	EnrollmentCompleted EnrollmentStatus = "completed"
	EnrollmentCancelled EnrollmentStatus = "cancelled"
)

func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentActive, EnrollmentPaused, EnrollmentCompleted, EnrollmentCancelled:
		return true
	}
	return false
}

type GoalType string

const (
	GoalRevenue    GoalType = "revenue"
	GoalDeals      GoalType = "deals"
	GoalActivities GoalType = "activities"
	GoalCustom     GoalType = "custom"
)

func (t GoalType) Valid() bool {
	switch t {
	case GoalRevenue, GoalDeals, GoalActivities, GoalCustom:
		return true
	}
	return false
}

type GoalPeriod string

const (
	PeriodDaily     GoalPeriod = "daily"
	PeriodWeekly    GoalPeriod = "weekly"
	PeriodMonthly   GoalPeriod = "monthly"
	PeriodQuarterly GoalPeriod = "quarterly"
	PeriodYearly    GoalPeriod = "yearly"
)

func (p GoalPeriod) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodQuarterly, PeriodYearly:
		return true
	}
	return false
}

type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalPaused    GoalStatus = "paused"
	GoalCancelled GoalStatus = "cancelled"
)

func (s GoalStatus) Valid() bool {
	switch s {
	case GoalActive, GoalCompleted, GoalPaused, GoalCancelled:
		return true
	}
	return false
}
