package core

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// registerAPIRoutes mirrors the domain access functions as JSON endpoints. Every handler
// builds a server dispatcher bound to the incoming request's token cookie.
func registerAPIRoutes(api *gin.RouterGroup, gw *Gateway) {
	as := func(c *gin.Context) *API { return NewAPI(gw.ServerDispatcher(c.Request)) }

	user := api.Group("/user")
	{
		user.GET("/me", func(c *gin.Context) {
			v, err := as(c).Me(c.Request.Context())
			respondValue(c, http.StatusOK, v, err)
		})
		user.GET("/profile/:id", func(c *gin.Context) {
			v, err := as(c).Profile(c.Request.Context(), c.Param("id"))
			respondValue(c, http.StatusOK, v, err)
		})
		user.PATCH("/profile", func(c *gin.Context) {
			upd, ok := bindBody[ProfileUpdate](c)
			if !ok {
				return
			}
			done, err := as(c).UpdateProfile(c.Request.Context(), upd)
			respondAction(c, done, err)
		})
		user.DELETE("/profile", func(c *gin.Context) {
			done, err := as(c).DeleteProfile(c.Request.Context())
			respondAction(c, done, err)
		})

		user.GET("/friends/requests", func(c *gin.Context) {
			v, err := as(c).FriendRequests(c.Request.Context())
			respondValue(c, http.StatusOK, v, err)
		})
		user.POST("/friends/requests/:id", func(c *gin.Context) {
			done, err := as(c).SendFriendRequest(c.Request.Context(), c.Param("id"))
			respondAction(c, done, err)
		})
		user.PATCH("/friends/requests/:id", func(c *gin.Context) {
			done, err := as(c).AcceptRequest(c.Request.Context(), c.Param("id"))
			respondAction(c, done, err)
		})
		user.DELETE("/friends/requests/:id", func(c *gin.Context) {
			done, err := as(c).RejectRequest(c.Request.Context(), c.Param("id"))
			respondAction(c, done, err)
		})
		user.GET("/friends/:id", func(c *gin.Context) {
			v, err := as(c).Friends(c.Request.Context(), c.Param("id"))
			respondValue(c, http.StatusOK, v, err)
		})
		user.DELETE("/friends/:id", func(c *gin.Context) {
			done, err := as(c).DeleteFriend(c.Request.Context(), c.Param("id"))
			respondAction(c, done, err)
		})
	}

	api.GET("/search/users", func(c *gin.Context) {
		v, err := as(c).SearchUsers(c.Request.Context(), c.Query("query"))
		respondValue(c, http.StatusOK, v, err)
	})
	api.GET("/search/groups", func(c *gin.Context) {
		v, err := as(c).SearchGroups(c.Request.Context(), c.Query("query"))
		respondValue(c, http.StatusOK, v, err)
	})

	events := api.Group("/events")
	{
		events.GET("", func(c *gin.Context) {
			filter := EventFilter(c.DefaultQuery("filter", string(FilterRecommendations)))
			v, err := as(c).Events(c.Request.Context(), filter)
			respondValue(c, http.StatusOK, v, err)
		})
		events.GET("/tags", func(c *gin.Context) {
			v, err := as(c).Tags(c.Request.Context())
			respondValue(c, http.StatusOK, v, err)
		})
		events.GET("/my/created", func(c *gin.Context) {
			v, err := as(c).CreatedEvents(c.Request.Context())
			respondValue(c, http.StatusOK, v, err)
		})
		events.GET("/my/participating", func(c *gin.Context) {
			v, err := as(c).ParticipatingEvents(c.Request.Context())
			respondValue(c, http.StatusOK, v, err)
		})
		events.GET("/:id", func(c *gin.Context) {
			v, err := as(c).Event(c.Request.Context(), c.Param("id"))
			respondValue(c, http.StatusOK, v, err)
		})
		events.POST("", func(c *gin.Context) {
			e, ok := bindBody[EventCreate](c)
			if !ok {
				return
			}
			v, err := as(c).CreateEvent(c.Request.Context(), e)
			respondValue(c, http.StatusCreated, v, err)
		})
		events.PATCH("/:id", func(c *gin.Context) {
			upd, ok := bindBody[EventUpdate](c)
			if !ok {
				return
			}
			v, err := as(c).UpdateEvent(c.Request.Context(), c.Param("id"), upd)
			respondValue(c, http.StatusOK, v, err)
		})
		events.DELETE("/:id", func(c *gin.Context) {
			done, err := as(c).DeleteEvent(c.Request.Context(), c.Param("id"))
			respondAction(c, done, err)
		})
		events.POST("/:id/participants", func(c *gin.Context) {
			done, err := as(c).JoinEvent(c.Request.Context(), c.Param("id"))
			respondAction(c, done, err)
		})
		events.DELETE("/:id/participants", func(c *gin.Context) {
			done, err := as(c).LeaveEvent(c.Request.Context(), c.Param("id"))
			respondAction(c, done, err)
		})
		events.POST("/:id/image", func(c *gin.Context) {
			fh, err := c.FormFile("file")
			if err != nil {
				respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "file is required")
				return
			}
			f, err := fh.Open()
			if err != nil {
				respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "unreadable file")
				return
			}
			defer f.Close()
			v, err := as(c).UploadEventImage(c.Request.Context(), c.Param("id"), fh.Filename, f)
			respondValue(c, http.StatusOK, v, err)
		})
	}

	groups := api.Group("/groups")
	{
		groups.GET("", func(c *gin.Context) {
			v, err := as(c).Groups(c.Request.Context())
			respondValue(c, http.StatusOK, v, err)
		})
		groups.GET("/user/:userID", func(c *gin.Context) {
			v, err := as(c).UserGroups(c.Request.Context(), c.Param("userID"))
			respondValue(c, http.StatusOK, v, err)
		})
		groups.GET("/:id", func(c *gin.Context) {
			v, err := as(c).Group(c.Request.Context(), c.Param("id"))
			respondValue(c, http.StatusOK, v, err)
		})
		groups.GET("/:id/events", func(c *gin.Context) {
			v, err := as(c).GroupEvents(c.Request.Context(), c.Param("id"))
			respondValue(c, http.StatusOK, v, err)
		})
		groups.GET("/:id/members", func(c *gin.Context) {
			v, err := as(c).Members(c.Request.Context(), c.Param("id"))
			respondValue(c, http.StatusOK, v, err)
		})
		groups.POST("", func(c *gin.Context) {
			g, ok := bindBody[GroupCreate](c)
			if !ok {
				return
			}
			v, err := as(c).CreateGroup(c.Request.Context(), g)
			respondValue(c, http.StatusCreated, v, err)
		})
		groups.PUT("/:id", func(c *gin.Context) {
			upd, ok := bindBody[GroupUpdate](c)
			if !ok {
				return
			}
			v, err := as(c).UpdateGroup(c.Request.Context(), c.Param("id"), upd)
			respondValue(c, http.StatusOK, v, err)
		})
		groups.DELETE("/:id", func(c *gin.Context) {
			done, err := as(c).DeleteGroup(c.Request.Context(), c.Param("id"))
			respondAction(c, done, err)
		})
		groups.POST("/:id/join", func(c *gin.Context) {
			done, err := as(c).JoinGroup(c.Request.Context(), c.Param("id"))
			respondAction(c, done, err)
		})
		groups.DELETE("/:id/leave", func(c *gin.Context) {
			done, err := as(c).LeaveGroup(c.Request.Context(), c.Param("id"))
			respondAction(c, done, err)
		})
		groups.POST("/:id/admins/:userID", func(c *gin.Context) {
			done, err := as(c).ToggleAdmin(c.Request.Context(), c.Param("id"), c.Param("userID"))
			respondAction(c, done, err)
		})
		groups.PATCH("/:id/avatar", func(c *gin.Context) {
			fh, err := c.FormFile("file")
			if err != nil {
				respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "file is required")
				return
			}
			f, err := fh.Open()
			if err != nil {
				respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "unreadable file")
				return
			}
			defer f.Close()
			v, err := as(c).UploadGroupAvatar(c.Request.Context(), c.Param("id"), fh.Filename, f)
			respondValue(c, http.StatusOK, v, err)
		})
		groups.POST("/:id/invite-link", func(c *gin.Context) {
			v, err := as(c).InvitationLink(c.Request.Context(), c.Param("id"))
			respondValue(c, http.StatusCreated, v, err)
		})
	}

	api.GET("/invites/:token", func(c *gin.Context) {
		v, err := as(c).InvitationData(c.Request.Context(), c.Param("token"))
		respondValue(c, http.StatusOK, v, err)
	})
	api.POST("/invites/:token/accept", func(c *gin.Context) {
		done, err := as(c).AcceptInvite(c.Request.Context(), c.Param("token"))
		respondAction(c, done, err)
	})
}
