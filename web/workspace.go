// ABOUTME: Activity, team, automation and analytics routes
// ABOUTME: Filters come from q/type/status/priority/tab/role/trigger/range query params
package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harperreed/agency/analytics"
	"github.com/harperreed/agency/gateway"
	"github.com/harperreed/agency/models"
	"github.com/harperreed/agency/views"
	"go.uber.org/zap"
)

func (s *Server) mountActivities(rg *gin.RouterGroup) {
	mountEntity[models.Activity, models.ActivityPatch](s, rg, "/activities", s.openActivities)

	rg.POST("/activities/:id/complete", func(c *gin.Context) {
		v := views.NewActivities(session(c), inbox(c), s.logger)
		if err := v.Load(c.Request.Context()); err != nil {
			s.fail(c, err)
			return
		}
		id := c.Param("id")
		if err := v.Complete(c.Request.Context(), id); err != nil {
			s.fail(c, err)
			return
		}
		item, _ := v.Find(id)
		done(c, http.StatusOK, gin.H{"item": item})
	})
}

func (s *Server) openActivities(sess *gateway.Session, n views.Notifier, logger *zap.Logger) (*views.View[models.Activity], func(*gin.Context) gin.H) {
	v := views.NewActivities(sess, n, logger)
	return v.View, func(c *gin.Context) gin.H {
		now := s.now()
		f := views.ActivityFilter{
			Term:     c.Query("q"),
			Type:     c.Query("type"),
			Status:   c.Query("status"),
			Priority: c.Query("priority"),
			Tab:      c.Query("tab"),
		}
		return gin.H{"activities": v.Search(f, now), "stats": v.Stats(now)}
	}
}

type memberRequest struct {
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Role       models.UserRole `json:"role"`
	Department string          `json:"department"`
}

func (s *Server) mountTeam(rg *gin.RouterGroup) {
	team := func(c *gin.Context) (*views.Team, bool) {
		t := views.NewTeam(session(c), inbox(c), s.logger)
		if err := t.Load(c.Request.Context()); err != nil {
			s.fail(c, err)
			return nil, false
		}
		return t, true
	}

	rg.GET("/team", func(c *gin.Context) {
		t, ok := team(c)
		if !ok {
			return
		}
		goals := t.Goals.Items()
		progress := make(map[string]int, len(goals))
		for _, g := range goals {
			progress[g.ID] = views.DisplayProgress(g)
		}
		c.JSON(http.StatusOK, gin.H{
			"members":   t.SearchUsers(c.Query("q"), c.Query("role")),
			"stats":     t.Stats(),
			"byRole":    t.MembersByRole(),
			"goals":     goals,
			"progress":  progress,
			"goalStats": t.GoalStats(),
		})
	})

	rg.POST("/team/members", func(c *gin.Context) {
		var req memberRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		t := views.NewTeam(session(c), inbox(c), s.logger)
		created, err := t.AddMember(c.Request.Context(), req.Name, req.Email, req.Role, req.Department)
		if err != nil {
			s.fail(c, err)
			return
		}
		done(c, http.StatusCreated, gin.H{"item": created})
	})

	rg.PATCH("/team/members/:id", func(c *gin.Context) {
		var patch models.UserPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			badRequest(c, err)
			return
		}
		t, ok := team(c)
		if !ok {
			return
		}
		if err := t.EditMember(c.Request.Context(), c.Param("id"), patch); err != nil {
			s.fail(c, err)
			return
		}
		done(c, http.StatusOK, nil)
	})

	rg.POST("/team/goals", func(c *gin.Context) {
		var g models.Goal
		if err := c.ShouldBindJSON(&g); err != nil {
			badRequest(c, err)
			return
		}
		t := views.NewTeam(session(c), inbox(c), s.logger)
		created, err := t.Goals.Add(c.Request.Context(), g)
		if err != nil {
			s.fail(c, err)
			return
		}
		done(c, http.StatusCreated, gin.H{"item": created})
	})

	rg.PATCH("/team/goals/:id", func(c *gin.Context) {
		var patch models.GoalPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			badRequest(c, err)
			return
		}
		t, ok := team(c)
		if !ok {
			return
		}
		if err := t.Goals.Edit(c.Request.Context(), c.Param("id"), patch); err != nil {
			s.fail(c, err)
			return
		}
		done(c, http.StatusOK, nil)
	})

	rg.DELETE("/team/goals/:id", func(c *gin.Context) {
		t, ok := team(c)
		if !ok {
			return
		}
		if err := t.Goals.Delete(c.Request.Context(), c.Param("id")); err != nil {
			s.fail(c, err)
			return
		}
		done(c, http.StatusOK, nil)
	})
}

type sequenceRequest struct {
	Name        string             `json:"name" binding:"required"`
	Description string             `json:"description"`
	TriggerType models.TriggerType `json:"triggerType"`
	Steps       []models.EmailStep `json:"steps"`
}

type enrollRequest struct {
	SequenceID string `json:"sequenceId" binding:"required"`
	ContactID  string `json:"contactId" binding:"required"`
}

func (s *Server) mountAutomation(rg *gin.RouterGroup) {
	automation := func(c *gin.Context) (*views.Automation, bool) {
		a := views.NewAutomation(session(c), inbox(c), s.logger)
		if err := a.Load(c.Request.Context()); err != nil {
			s.fail(c, err)
			return nil, false
		}
		return a, true
	}

	rg.GET("/automation", func(c *gin.Context) {
		a, ok := automation(c)
		if !ok {
			return
		}
		seqs := a.SearchSequences(c.Query("q"), c.Query("trigger"))
		enrolled := make(map[string]int, len(seqs.Items))
		for _, seq := range seqs.Items {
			enrolled[seq.ID] = a.EnrolledIn(seq.ID)
		}
		c.JSON(http.StatusOK, gin.H{
			"sequences":   seqs,
			"enrolled":    enrolled,
			"enrollments": a.Enrollments.Items(),
			"stats":       a.Stats(),
		})
	})

	rg.POST("/automation/sequences", func(c *gin.Context) {
		var req sequenceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		d := views.NewSequenceDraft()
		d.Name = req.Name
		d.Description = req.Description
		if req.TriggerType.Valid() {
			d.Trigger = req.TriggerType
		}
		if len(req.Steps) > 0 {
			d.Steps = req.Steps
		}
		a := views.NewAutomation(session(c), inbox(c), s.logger)
		seq, err := a.Create(c.Request.Context(), d)
		if err != nil {
			s.fail(c, err)
			return
		}
		done(c, http.StatusCreated, gin.H{"item": seq})
	})

	rg.POST("/automation/sequences/:id/toggle", func(c *gin.Context) {
		a, ok := automation(c)
		if !ok {
			return
		}
		id := c.Param("id")
		if err := a.Toggle(c.Request.Context(), id); err != nil {
			s.fail(c, err)
			return
		}
		seq, _ := a.Sequences.Find(id)
		done(c, http.StatusOK, gin.H{"item": seq})
	})

	rg.POST("/automation/enrollments", func(c *gin.Context) {
		var req enrollRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		a, ok := automation(c)
		if !ok {
			return
		}
		e, err := a.Enroll(c.Request.Context(), req.SequenceID, req.ContactID)
		if err != nil {
			s.fail(c, err)
			return
		}
		done(c, http.StatusCreated, gin.H{"item": e})
	})
}

func (s *Server) mountAnalytics(rg *gin.RouterGroup) {
	rg.GET("/dashboard", func(c *gin.Context) {
		d, err := analytics.LoadDashboard(c.Request.Context(), session(c), s.logger)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, d)
	})

	rg.GET("/analytics", func(c *gin.Context) {
		st, err := analytics.LoadLeadStats(c.Request.Context(), session(c), s.logger)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, st)
	})

	rg.GET("/advanced-analytics", func(c *gin.Context) {
		rng := analytics.ParseRange(c.DefaultQuery("range", string(analytics.Range30d)))
		r, err := analytics.LoadAdvanced(c.Request.Context(), session(c), rng, s.now(), s.logger)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, r)
	})
}
