package server

import (
	"net/http"
	"path"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"

	"github.com/halewell/halewell/internal/auth"
	"github.com/halewell/halewell/internal/blog"
	"github.com/halewell/halewell/internal/gen"
)

func (s *Server) registerAdminRoutes(r *gin.Engine) {
	admin := r.Group("/api/admin")
	admin.Use(auth.RequireBearer(auth.StaticToken{Token: s.cfg.Site.AdminToken}))
	{
		admin.GET("/posts", s.handleAdminListPosts)
		admin.POST("/posts", s.handleAdminCreatePost)
		admin.PUT("/posts/:slug", s.handleAdminUpdatePost)

		admin.GET("/comments/pending", s.handleAdminPendingComments)
		admin.POST("/comments/:id/approve", s.handleAdminApproveComment)

		admin.GET("/subscribers", s.handleAdminSubscribers)
		admin.GET("/messages", s.handleAdminMessages)

		admin.POST("/generate", s.handleAdminGenerate)
		admin.GET("/diversity", s.handleAdminDiversity)
		admin.GET("/calendar", s.handleAdminCalendar)

		admin.GET("/media", s.handleAdminListMedia)
		admin.POST("/media", s.handleAdminUploadMedia)
		admin.DELETE("/media/*path", s.handleAdminRemoveMedia)
	}
}

func (s *Server) handleAdminListPosts(c *gin.Context) {
	posts, err := s.blog.ListAllPosts(c.Request.Context(), pageParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (s *Server) handleAdminCreatePost(c *gin.Context) {
	var in blog.PostInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	post, err := s.blog.CreatePost(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (s *Server) handleAdminUpdatePost(c *gin.Context) {
	var in blog.PostInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	post, err := s.blog.UpdatePost(c.Request.Context(), c.Param("slug"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (s *Server) handleAdminPendingComments(c *gin.Context) {
	comments, err := s.blog.PendingComments(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

func (s *Server) handleAdminApproveComment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comment id"})
		return
	}
	if err := s.blog.ApproveComment(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "approved"})
}

func (s *Server) handleAdminSubscribers(c *gin.Context) {
	subscribers, err := s.blog.ActiveSubscribers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"subscribers": subscribers,
		"count":       len(subscribers),
	})
}

func (s *Server) handleAdminMessages(c *gin.Context) {
	messages, err := s.blog.ContactMessages(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

type generateRequest struct {
	Topic      string `json:"topic"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	Count      int    `json:"count"`
	Draft      bool   `json:"draft"`
}

func (s *Server) handleAdminGenerate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	count := req.Count
	if count < 1 {
		count = 1
	}

	summary, err := s.pipeline.RunBatch(c.Request.Context(), count, gen.Options{
		Topic:      req.Topic,
		Category:   req.Category,
		Difficulty: req.Difficulty,
		Publish:    !req.Draft && s.cfg.Generate.Publish,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "summary": summary})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleAdminDiversity(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days < 1 || days > 365 {
		days = 30
	}
	report, err := s.engine.DiversityReport(c.Request.Context(), days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleAdminCalendar(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days < 1 {
		days = 7
	}
	perDay, err := strconv.Atoi(c.DefaultQuery("per_day", "1"))
	if err != nil || perDay < 1 {
		perDay = 1
	}

	loc, err := s.cfg.Generate.Location()
	if err != nil {
		respondError(c, err)
		return
	}
	plan, err := s.calendar.Plan(c.Request.Context(), days, perDay, loc)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (s *Server) handleAdminListMedia(c *gin.Context) {
	files, err := s.media.List(c.Query("prefix"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

func (s *Server) handleAdminUploadMedia(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart file field required"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
		return
	}
	defer src.Close()

	name := path.Base(file.Filename)
	rel := slug.Make(name[:len(name)-len(path.Ext(name))]) + path.Ext(name)
	saved, err := s.media.Save(rel, src)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"path": saved, "url": "/media/" + saved})
}

func (s *Server) handleAdminRemoveMedia(c *gin.Context) {
	if err := s.media.Remove(c.Param("path")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}
