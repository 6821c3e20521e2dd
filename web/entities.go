// ABOUTME: CRUD routes for clients, social campaigns, Upwork projects and LinkedIn contacts
// ABOUTME: One generic mount per entity view; list routes take q/status/platform filters
package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harperreed/agency/gateway"
	"github.com/harperreed/agency/models"
	"github.com/harperreed/agency/views"
	"go.uber.org/zap"
)

// opener builds an entity view for one request along with its list body.
type opener[T any] func(sess *gateway.Session, n views.Notifier, logger *zap.Logger) (*views.View[T], func(*gin.Context) gin.H)

func (s *Server) mountEntities(rg *gin.RouterGroup) {
	mountEntity[models.Client, models.ClientPatch](s, rg, "/clients",
		func(sess *gateway.Session, n views.Notifier, logger *zap.Logger) (*views.View[models.Client], func(*gin.Context) gin.H) {
			v := views.NewClients(sess, n, logger)
			return v.View, func(c *gin.Context) gin.H {
				return gin.H{"clients": v.Search(c.Query("q"), c.Query("status")), "stats": v.Stats()}
			}
		})
	mountEntity[models.SocialCampaign, models.SocialCampaignPatch](s, rg, "/social-media",
		func(sess *gateway.Session, n views.Notifier, logger *zap.Logger) (*views.View[models.SocialCampaign], func(*gin.Context) gin.H) {
			v := views.NewCampaigns(sess, n, logger)
			return v.View, func(c *gin.Context) gin.H {
				return gin.H{"campaigns": v.Search(c.Query("q"), c.Query("status"), c.Query("platform")), "totals": v.Totals()}
			}
		})
	mountEntity[models.UpworkProject, models.UpworkProjectPatch](s, rg, "/upwork",
		func(sess *gateway.Session, n views.Notifier, logger *zap.Logger) (*views.View[models.UpworkProject], func(*gin.Context) gin.H) {
			v := views.NewProjects(sess, n, logger)
			return v.View, func(c *gin.Context) gin.H {
				return gin.H{"projects": v.Search(c.Query("q"), c.Query("status")), "stats": v.Stats()}
			}
		})
	mountEntity[models.LinkedInContact, models.LinkedInContactPatch](s, rg, "/linkedin",
		func(sess *gateway.Session, n views.Notifier, logger *zap.Logger) (*views.View[models.LinkedInContact], func(*gin.Context) gin.H) {
			v := views.NewContacts(sess, n, logger)
			return v.View, func(c *gin.Context) gin.H {
				return gin.H{"contacts": v.Search(c.Query("q"), c.Query("status")), "stats": v.Stats()}
			}
		})
}

// mountEntity adds list, create, update and delete routes for one view.
// Updates decode into the entity's patch type so only mutable fields can
// change.
func mountEntity[T any, P views.Patch](s *Server, rg *gin.RouterGroup, path string, open opener[T]) {
	loaded := func(c *gin.Context) (*views.View[T], func(*gin.Context) gin.H, bool) {
		v, body := open(session(c), inbox(c), s.logger)
		if err := v.Load(c.Request.Context()); err != nil {
			s.fail(c, err)
			return nil, nil, false
		}
		return v, body, true
	}

	rg.GET(path, func(c *gin.Context) {
		v, body, ok := loaded(c)
		if !ok {
			return
		}
		out := body(c)
		out["state"] = v.State().String()
		c.JSON(http.StatusOK, out)
	})

	rg.POST(path, func(c *gin.Context) {
		var item T
		if err := c.ShouldBindJSON(&item); err != nil {
			badRequest(c, err)
			return
		}
		v, _ := open(session(c), inbox(c), s.logger)
		created, err := v.Add(c.Request.Context(), item)
		if err != nil {
			s.fail(c, err)
			return
		}
		done(c, http.StatusCreated, gin.H{"item": created})
	})

	rg.PATCH(path+"/:id", func(c *gin.Context) {
		var patch P
		if err := c.ShouldBindJSON(&patch); err != nil {
			badRequest(c, err)
			return
		}
		v, _, ok := loaded(c)
		if !ok {
			return
		}
		id := c.Param("id")
		if err := v.Edit(c.Request.Context(), id, patch); err != nil {
			s.fail(c, err)
			return
		}
		item, _ := v.Find(id)
		done(c, http.StatusOK, gin.H{"item": item})
	})

	rg.DELETE(path+"/:id", func(c *gin.Context) {
		v, _, ok := loaded(c)
		if !ok {
			return
		}
		if err := v.Delete(c.Request.Context(), c.Param("id")); err != nil {
			s.fail(c, err)
			return
		}
		done(c, http.StatusOK, nil)
	})
}
