// ABOUTME: Record transform layer between stored snake_case records and view models
// ABOUTME: ToView never fails; ToRecord assigns ids, stamps times and applies defaults
package transform

import (
	"time"

	"github.com/harperreed/agency/models"
)

// ID prefixes per collection.
const (
	PrefixClient     = "client"
	PrefixCampaign   = "campaign"
	PrefixProject    = "project"
	PrefixContact    = "contact"
	PrefixUser       = "user"
	PrefixStage      = "stage"
	PrefixDeal       = "deal"
	PrefixActivity   = "activity"
	PrefixSequence   = "sequence"
	PrefixEnrollment = "enrollment"
	PrefixGoal       = "goal"
	PrefixLeadList   = "leadlist"
	PrefixStep       = "step"
)

func ClientToView(r models.ClientRecord) models.Client {
	return models.Client{
		ID:           r.ID,
		Name:         r.Name,
		Company:      r.Company,
		Email:        r.Email,
		Phone:        r.Phone,
		Status:       models.ClientStatus(r.Status),
		Services:     ParseStringSlice(r.Services),
		MonthlyValue: r.MonthlyValue,
		JoinedDate:   r.JoinedDate,
		UserID:       r.UserID,
		CreatedAt:    ParseTime(r.CreatedAt),
		UpdatedAt:    ParseTime(r.UpdatedAt),
	}
}

func ClientToRecord(c models.Client, ownerID string, now time.Time) models.ClientRecord {
	id := c.ID
	if id == "" {
		id = NewID(PrefixClient)
	}
	joined := c.JoinedDate
	if joined == "" {
		joined = today(now)
	}
	created, updated := stamps(c.CreatedAt, now)
	return models.ClientRecord{
		ID:           id,
		Name:         c.Name,
		Company:      c.Company,
		Email:        c.Email,
		Phone:        c.Phone,
		Status:       string(orDefault(c.Status, models.ClientProspect)),
		Services:     encodeJSON(c.Services, "[]"),
		MonthlyValue: c.MonthlyValue,
		JoinedDate:   joined,
		UserID:       ownerID,
		CreatedAt:    created,
		UpdatedAt:    updated,
	}
}

func SocialCampaignToView(r models.SocialCampaignRecord) models.SocialCampaign {
	return models.SocialCampaign{
		ID:         r.ID,
		Title:      r.Title,
		ClientID:   r.ClientID,
		Platform:   models.CampaignPlatform(r.Platform),
		Status:     models.CampaignStatus(r.Status),
		StartDate:  r.StartDate,
		EndDate:    r.EndDate,
		Budget:     r.Budget,
		Reach:      r.Reach,
		Engagement: r.Engagement,
		UserID:     r.UserID,
		CreatedAt:  ParseTime(r.CreatedAt),
		UpdatedAt:  ParseTime(r.UpdatedAt),
	}
}

func SocialCampaignToRecord(c models.SocialCampaign, ownerID string, now time.Time) models.SocialCampaignRecord {
	id := c.ID
	if id == "" {
		id = NewID(PrefixCampaign)
	}
	start, end := c.StartDate, c.EndDate
	if start == "" {
		start = today(now)
	}
	if end == "" {
		end = today(now)
	}
	created, updated := stamps(c.CreatedAt, now)
	return models.SocialCampaignRecord{
		ID:         id,
		Title:      c.Title,
		ClientID:   c.ClientID,
		Platform:   string(orDefault(c.Platform, models.PlatformInstagram)),
		Status:     string(orDefault(c.Status, models.CampaignDraft)),
		StartDate:  start,
		EndDate:    end,
		Budget:     c.Budget,
		Reach:      c.Reach,
		Engagement: c.Engagement,
		UserID:     ownerID,
		CreatedAt:  created,
		UpdatedAt:  updated,
	}
}

func UpworkProjectToView(r models.UpworkProjectRecord) models.UpworkProject {
	return models.UpworkProject{
		ID:            r.ID,
		Title:         r.Title,
		Client:        r.Client,
		Budget:        r.Budget,
		Status:        models.ProjectStatus(r.Status),
		SubmittedDate: r.SubmittedDate,
		Deadline:      deref(r.Deadline),
		Description:   r.Description,
		Skills:        ParseStringSlice(r.Skills),
		UserID:        r.UserID,
		CreatedAt:     ParseTime(r.CreatedAt),
		UpdatedAt:     ParseTime(r.UpdatedAt),
	}
}

func UpworkProjectToRecord(p models.UpworkProject, ownerID string, now time.Time) models.UpworkProjectRecord {
	id := p.ID
	if id == "" {
		id = NewID(PrefixProject)
	}
	submitted := p.SubmittedDate
	if submitted == "" {
		submitted = today(now)
	}
	created, updated := stamps(p.CreatedAt, now)
	return models.UpworkProjectRecord{
		ID:            id,
		Title:         p.Title,
		Client:        p.Client,
		Budget:        p.Budget,
		Status:        string(orDefault(p.Status, models.ProjectProposal)),
		SubmittedDate: submitted,
		Deadline:      Nullable(p.Deadline),
		Description:   p.Description,
		Skills:        encodeJSON(p.Skills, "[]"),
		UserID:        ownerID,
		CreatedAt:     created,
		UpdatedAt:     updated,
	}
}

func LinkedInContactToView(r models.LinkedInContactRecord) models.LinkedInContact {
	return models.LinkedInContact{
		ID:             r.ID,
		Name:           r.Name,
		Title:          r.Title,
		Company:        r.Company,
		Status:         models.ContactStatus(r.Status),
		ConnectionDate: deref(r.ConnectionDate),
		LastMessage:    deref(r.LastMessage),
		Notes:          r.Notes,
		UserID:         r.UserID,
		CreatedAt:      ParseTime(r.CreatedAt),
		UpdatedAt:      ParseTime(r.UpdatedAt),
	}
}

func LinkedInContactToRecord(c models.LinkedInContact, ownerID string, now time.Time) models.LinkedInContactRecord {
	id := c.ID
	if id == "" {
		id = NewID(PrefixContact)
	}
	created, updated := stamps(c.CreatedAt, now)
	return models.LinkedInContactRecord{
		ID:             id,
		Name:           c.Name,
		Title:          c.Title,
		Company:        c.Company,
		Status:         string(orDefault(c.Status, models.ContactPending)),
		ConnectionDate: Nullable(c.ConnectionDate),
		LastMessage:    Nullable(c.LastMessage),
		Notes:          c.Notes,
		UserID:         ownerID,
		CreatedAt:      created,
		UpdatedAt:      updated,
	}
}

func UserToView(r models.UserRecord) models.User {
	return models.User{
		ID:          r.ID,
		Email:       r.Email,
		Name:        r.Name,
		Role:        models.UserRole(r.Role),
		AvatarURL:   deref(r.AvatarURL),
		Department:  deref(r.Department),
		Permissions: ParseStringSlice(r.Permissions),
		IsActive:    r.IsActive > 0,
		LastLogin:   parseTimePtr(r.LastLogin),
		CreatedAt:   ParseTime(r.CreatedAt),
		UpdatedAt:   ParseTime(r.UpdatedAt),
	}
}

func UserToRecord(u models.User, now time.Time) models.UserRecord {
	id := u.ID
	if id == "" {
		id = NewID(PrefixUser)
	}
	created, updated := stamps(u.CreatedAt, now)
	return models.UserRecord{
		ID:          id,
		Email:       u.Email,
		Name:        u.Name,
		Role:        string(orDefault(u.Role, models.RoleMember)),
		AvatarURL:   Nullable(u.AvatarURL),
		Department:  Nullable(u.Department),
		Permissions: encodeJSON(u.Permissions, "[]"),
		IsActive:    flag(u.IsActive),
		LastLogin:   formatTimePtr(u.LastLogin),
		CreatedAt:   created,
		UpdatedAt:   updated,
	}
}

func PipelineStageToView(r models.PipelineStageRecord) models.PipelineStage {
	return models.PipelineStage{
		ID:        r.ID,
		UserID:    r.UserID,
		Name:      r.Name,
		Position:  r.Position,
		Color:     r.Color,
		IsActive:  r.IsActive > 0,
		CreatedAt: ParseTime(r.CreatedAt),
		UpdatedAt: ParseTime(r.UpdatedAt),
	}
}

func PipelineStageToRecord(s models.PipelineStage, ownerID string, now time.Time) models.PipelineStageRecord {
	id := s.ID
	if id == "" {
		id = NewID(PrefixStage)
	}
	created, updated := stamps(s.CreatedAt, now)
	return models.PipelineStageRecord{
		ID:        id,
		UserID:    ownerID,
		Name:      s.Name,
		Position:  s.Position,
		Color:     s.Color,
		IsActive:  flag(s.IsActive),
		CreatedAt: created,
		UpdatedAt: updated,
	}
}

func DealToView(r models.DealRecord) models.Deal {
	return models.Deal{
		ID:                r.ID,
		UserID:            r.UserID,
		ClientID:          deref(r.ClientID),
		Title:             r.Title,
		Description:       deref(r.Description),
		Value:             r.Value,
		Currency:          r.Currency,
		StageID:           deref(r.StageID),
		Probability:       r.Probability,
		ExpectedCloseDate: deref(r.ExpectedCloseDate),
		ActualCloseDate:   deref(r.ActualCloseDate),
		Source:            deref(r.Source),
		AssignedTo:        deref(r.AssignedTo),
		Tags:              ParseStringSlice(r.Tags),
		CustomFields:      ParseObject(r.CustomFields),
		CreatedAt:         ParseTime(r.CreatedAt),
		UpdatedAt:         ParseTime(r.UpdatedAt),
	}
}

func DealToRecord(d models.Deal, ownerID string, now time.Time) models.DealRecord {
	id := d.ID
	if id == "" {
		id = NewID(PrefixDeal)
	}
	created, updated := stamps(d.CreatedAt, now)
	return models.DealRecord{
		ID:                id,
		UserID:            ownerID,
		ClientID:          Nullable(d.ClientID),
		Title:             d.Title,
		Description:       Nullable(d.Description),
		Value:             d.Value,
		Currency:          orDefault(d.Currency, "USD"),
		StageID:           Nullable(d.StageID),
		Probability:       d.Probability,
		ExpectedCloseDate: Nullable(d.ExpectedCloseDate),
		ActualCloseDate:   Nullable(d.ActualCloseDate),
		Source:            Nullable(d.Source),
		AssignedTo:        Nullable(d.AssignedTo),
		Tags:              encodeJSON(d.Tags, "[]"),
		CustomFields:      encodeJSON(d.CustomFields, "{}"),
		CreatedAt:         created,
		UpdatedAt:         updated,
	}
}

func ActivityToView(r models.ActivityRecord) models.Activity {
	return models.Activity{
		ID:            r.ID,
		UserID:        r.UserID,
		Type:          models.ActivityType(r.Type),
		Title:         r.Title,
		Description:   deref(r.Description),
		RelatedToType: deref(r.RelatedToType),
		RelatedToID:   deref(r.RelatedToID),
		AssignedTo:    deref(r.AssignedTo),
		DueDate:       parseTimePtr(r.DueDate),
		CompletedAt:   parseTimePtr(r.CompletedAt),
		Priority:      models.ActivityPriority(r.Priority),
		Status:        models.ActivityStatus(r.Status),
		Metadata:      ParseObject(deref(r.Metadata)),
		CreatedAt:     ParseTime(r.CreatedAt),
		UpdatedAt:     ParseTime(r.UpdatedAt),
	}
}

func ActivityToRecord(a models.Activity, ownerID string, now time.Time) models.ActivityRecord {
	id := a.ID
	if id == "" {
		id = NewID(PrefixActivity)
	}
	metadata := encodeJSON(a.Metadata, "{}")
	created, updated := stamps(a.CreatedAt, now)
	return models.ActivityRecord{
		ID:            id,
		UserID:        ownerID,
		Type:          string(orDefault(a.Type, models.ActivityTask)),
		Title:         a.Title,
		Description:   Nullable(a.Description),
		RelatedToType: Nullable(a.RelatedToType),
		RelatedToID:   Nullable(a.RelatedToID),
		AssignedTo:    Nullable(a.AssignedTo),
		DueDate:       formatTimePtr(a.DueDate),
		CompletedAt:   formatTimePtr(a.CompletedAt),
		Priority:      string(orDefault(a.Priority, models.PriorityMedium)),
		Status:        string(orDefault(a.Status, models.ActivityPending)),
		Metadata:      &metadata,
		CreatedAt:     created,
		UpdatedAt:     updated,
	}
}

func EmailSequenceToView(r models.EmailSequenceRecord) models.EmailSequence {
	return models.EmailSequence{
		ID:          r.ID,
		UserID:      r.UserID,
		Name:        r.Name,
		Description: deref(r.Description),
		TriggerType: models.TriggerType(r.TriggerType),
		IsActive:    r.IsActive > 0,
		Steps:       ParseSteps(r.Steps),
		CreatedAt:   ParseTime(r.CreatedAt),
		UpdatedAt:   ParseTime(r.UpdatedAt),
	}
}

func EmailSequenceToRecord(s models.EmailSequence, ownerID string, now time.Time) models.EmailSequenceRecord {
	id := s.ID
	if id == "" {
		id = NewID(PrefixSequence)
	}
	steps := make([]models.EmailStep, len(s.Steps))
	for i, step := range s.Steps {
		if step.ID == "" {
			step.ID = NewID(PrefixStep)
		}
		steps[i] = step
	}
	created, updated := stamps(s.CreatedAt, now)
	return models.EmailSequenceRecord{
		ID:          id,
		UserID:      ownerID,
		Name:        s.Name,
		Description: Nullable(s.Description),
		TriggerType: string(orDefault(s.TriggerType, models.TriggerManual)),
		IsActive:    flag(s.IsActive),
		Steps:       encodeJSON(steps, "[]"),
		CreatedAt:   created,
		UpdatedAt:   updated,
	}
}

func SequenceEnrollmentToView(r models.SequenceEnrollmentRecord) models.SequenceEnrollment {
	return models.SequenceEnrollment{
		ID:          r.ID,
		SequenceID:  r.SequenceID,
		ContactID:   r.ContactID,
		CurrentStep: r.CurrentStep,
		Status:      models.EnrollmentStatus(r.Status),
		EnrolledAt:  ParseTime(r.EnrolledAt),
		CompletedAt: parseTimePtr(r.CompletedAt),
		CreatedAt:   ParseTime(r.CreatedAt),
		UpdatedAt:   ParseTime(r.UpdatedAt),
	}
}

func SequenceEnrollmentToRecord(e models.SequenceEnrollment, ownerID string, now time.Time) models.SequenceEnrollmentRecord {
	id := e.ID
	if id == "" {
		id = NewID(PrefixEnrollment)
	}
	enrolled := e.EnrolledAt
	if enrolled.IsZero() {
		enrolled = now
	}
	created, updated := stamps(e.CreatedAt, now)
	return models.SequenceEnrollmentRecord{
		ID:          id,
		UserID:      ownerID,
		SequenceID:  e.SequenceID,
		ContactID:   e.ContactID,
		CurrentStep: e.CurrentStep,
		Status:      string(orDefault(e.Status, models.EnrollmentActive)),
		EnrolledAt:  models.FormatTime(enrolled),
		CompletedAt: formatTimePtr(e.CompletedAt),
		CreatedAt:   created,
		UpdatedAt:   updated,
	}
}

func GoalToView(r models.GoalRecord) models.Goal {
	return models.Goal{
		ID:           r.ID,
		UserID:       r.UserID,
		AssignedTo:   deref(r.AssignedTo),
		Type:         models.GoalType(r.Type),
		Title:        r.Title,
		TargetValue:  r.TargetValue,
		CurrentValue: r.CurrentValue,
		Period:       models.GoalPeriod(r.Period),
		StartDate:    r.StartDate,
		EndDate:      r.EndDate,
		Status:       models.GoalStatus(r.Status),
		CreatedAt:    ParseTime(r.CreatedAt),
		UpdatedAt:    ParseTime(r.UpdatedAt),
	}
}

func GoalToRecord(g models.Goal, ownerID string, now time.Time) models.GoalRecord {
	id := g.ID
	if id == "" {
		id = NewID(PrefixGoal)
	}
	start := g.StartDate
	if start == "" {
		start = today(now)
	}
	created, updated := stamps(g.CreatedAt, now)
	return models.GoalRecord{
		ID:           id,
		UserID:       ownerID,
		AssignedTo:   Nullable(g.AssignedTo),
		Type:         string(orDefault(g.Type, models.GoalCustom)),
		Title:        g.Title,
		TargetValue:  g.TargetValue,
		CurrentValue: g.CurrentValue,
		Period:       string(orDefault(g.Period, models.PeriodMonthly)),
		StartDate:    start,
		EndDate:      g.EndDate,
		Status:       string(orDefault(g.Status, models.GoalActive)),
		CreatedAt:    created,
		UpdatedAt:    updated,
	}
}

func LeadListToView(r models.LeadListRecord) models.LeadList {
	leads := ParseLeads(r.Leads)
	total := r.TotalLeads
	if total == 0 {
		total = len(leads)
	}
	return models.LeadList{
		ID:         r.ID,
		UserID:     r.UserID,
		Niche:      r.Niche,
		Leads:      leads,
		TotalLeads: total,
		CreatedAt:  ParseTime(r.CreatedAt),
	}
}

func LeadListToRecord(l models.LeadList, ownerID string, now time.Time) models.LeadListRecord {
	id := l.ID
	if id == "" {
		id = NewID(PrefixLeadList)
	}
	leads := l.Leads
	if leads == nil {
		leads = []models.Lead{}
	}
	created, updated := stamps(l.CreatedAt, now)
	return models.LeadListRecord{
		ID:         id,
		UserID:     ownerID,
		Niche:      l.Niche,
		Leads:      encodeJSON(leads, "[]"),
		TotalLeads: len(leads),
		CreatedAt:  created,
		UpdatedAt:  updated,
	}
}

// SystemStageRecords renders the default stages as records owned by owner.
func SystemStageRecords(owner string, now time.Time) []models.PipelineStageRecord {
	out := make([]models.PipelineStageRecord, 0, len(models.DefaultStages))
	for _, stage := range models.DefaultStages {
		out = append(out, PipelineStageToRecord(stage, owner, now))
	}
	return out
}
