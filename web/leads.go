// ABOUTME: Lead generator and saved lead list routes
// ABOUTME: Export streams a CSV or JSON attachment named after the niche
package web

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/harperreed/agency/leadgen"
	"github.com/harperreed/agency/models"
	"go.uber.org/zap"
)

type generateRequest struct {
	Niche string `json:"niche"`
}

type saveListRequest struct {
	Niche string        `json:"niche"`
	Leads []models.Lead `json:"leads"`
}

func (s *Server) mountLeads(rg *gin.RouterGroup) {
	rg.POST("/generator", func(c *gin.Context) {
		if s.opts.Streamer == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "lead generation is not configured"})
			return
		}
		var req generateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		if _, err := session(c).Principal(c.Request.Context()); err != nil {
			s.fail(c, err)
			return
		}
		g := leadgen.NewGenerator(s.opts.Streamer, s.opts.Model, s.logger)
		leads, err := g.Generate(c.Request.Context(), req.Niche)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"niche":   g.Niche(),
			"state":   g.State().String(),
			"leads":   leads,
			"preview": g.Preview(),
		})
	})

	lists := func(c *gin.Context) (*leadgen.Lists, bool) {
		l := leadgen.NewLists(session(c), inbox(c), s.logger)
		if err := l.Load(c.Request.Context()); err != nil {
			s.fail(c, err)
			return nil, false
		}
		return l, true
	}

	rg.GET("/saved-lists", func(c *gin.Context) {
		l, ok := lists(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"lists": l.Search(c.Query("q"))})
	})

	rg.POST("/saved-lists", func(c *gin.Context) {
		var req saveListRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		l := leadgen.NewLists(session(c), inbox(c), s.logger)
		saved, err := l.Save(c.Request.Context(), req.Niche, req.Leads)
		if err != nil {
			s.fail(c, err)
			return
		}
		done(c, http.StatusCreated, gin.H{"item": saved})
	})

	rg.DELETE("/saved-lists/:id", func(c *gin.Context) {
		l, ok := lists(c)
		if !ok {
			return
		}
		if err := l.Delete(c.Request.Context(), c.Param("id")); err != nil {
			s.fail(c, err)
			return
		}
		done(c, http.StatusOK, nil)
	})

	rg.GET("/saved-lists/:id/export", func(c *gin.Context) {
		l, ok := lists(c)
		if !ok {
			return
		}
		list, found := l.Find(c.Param("id"))
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "lead list not found"})
			return
		}
		name := leadgen.ExportFilename(list.Niche, s.now())
		if strings.EqualFold(c.Query("format"), "json") {
			name = strings.TrimSuffix(name, ".csv") + ".json"
			c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
			c.Header("Content-Type", "application/json")
			c.Status(http.StatusOK)
			if err := leadgen.WriteJSON(c.Writer, list.Leads); err != nil {
				s.logger.Warn("json export failed", zap.Error(err))
			}
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
		c.Header("Content-Type", "text/csv")
		c.Status(http.StatusOK)
		if err := leadgen.WriteCSV(c.Writer, list.Leads); err != nil {
			s.logger.Warn("csv export failed", zap.Error(err))
		}
	})
}
