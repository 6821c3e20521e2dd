// ABOUTME: Pipeline board routes: columns, deal creation, edits and stage moves
// ABOUTME: A move is the single optimistic write; failures roll back inside the board
package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harperreed/agency/models"
	"github.com/harperreed/agency/views"
)

type dealRequest struct {
	Title             string  `json:"title" binding:"required"`
	Description       string  `json:"description"`
	Value             float64 `json:"value"`
	Probability       *int    `json:"probability"`
	StageID           string  `json:"stageId"`
	ClientID          string  `json:"clientId"`
	ExpectedCloseDate string  `json:"expectedCloseDate"`
	Source            string  `json:"source"`
	AssignedTo        string  `json:"assignedTo"`
}

type moveRequest struct {
	StageID string `json:"stageId" binding:"required"`
}

func (s *Server) mountPipeline(rg *gin.RouterGroup) {
	board := func(c *gin.Context) (*views.Board, bool) {
		b := views.NewBoard(session(c), inbox(c), s.logger)
		if err := b.Load(c.Request.Context()); err != nil {
			s.fail(c, err)
			return nil, false
		}
		return b, true
	}

	rg.GET("/pipeline", func(c *gin.Context) {
		b, ok := board(c)
		if !ok {
			return
		}
		f := views.BoardFilter{Term: c.Query("q"), Stage: c.Query("stage")}
		c.JSON(http.StatusOK, gin.H{
			"state":      b.State().String(),
			"stages":     b.Stages(),
			"columns":    b.Columns(f),
			"unassigned": b.Unassigned(f),
			"stats":      b.Stats(f),
		})
	})

	rg.POST("/pipeline/deals", func(c *gin.Context) {
		var req dealRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		b, ok := board(c)
		if !ok {
			return
		}
		form := b.NewDealForm()
		form.Title = req.Title
		form.Description = req.Description
		form.Value = req.Value
		if req.Probability != nil {
			form.Probability = *req.Probability
		}
		if req.StageID != "" {
			form.StageID = req.StageID
		}
		form.ClientID = req.ClientID
		form.ExpectedCloseDate = req.ExpectedCloseDate
		form.Source = req.Source
		form.AssignedTo = req.AssignedTo

		deal, err := b.AddDeal(c.Request.Context(), form)
		if err != nil {
			s.fail(c, err)
			return
		}
		done(c, http.StatusCreated, gin.H{"item": deal})
	})

	rg.POST("/pipeline/deals/:id/move", func(c *gin.Context) {
		var req moveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		b, ok := board(c)
		if !ok {
			return
		}
		moved, err := b.Move(c.Request.Context(), c.Param("id"), req.StageID)
		if err != nil {
			s.fail(c, err)
			return
		}
		done(c, http.StatusOK, gin.H{"moved": moved, "stage": b.StageLabel(req.StageID)})
	})

	rg.PATCH("/pipeline/deals/:id", func(c *gin.Context) {
		var patch models.DealPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			badRequest(c, err)
			return
		}
		b, ok := board(c)
		if !ok {
			return
		}
		if err := b.EditDeal(c.Request.Context(), c.Param("id"), patch); err != nil {
			s.fail(c, err)
			return
		}
		done(c, http.StatusOK, nil)
	})

	rg.DELETE("/pipeline/deals/:id", func(c *gin.Context) {
		b, ok := board(c)
		if !ok {
			return
		}
		if err := b.DeleteDeal(c.Request.Context(), c.Param("id")); err != nil {
			s.fail(c, err)
			return
		}
		done(c, http.StatusOK, nil)
	})
}
