package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/halewell/halewell/internal/store"
)

func (s *Server) registerPublicRoutes(r *gin.Engine) {
	r.GET("/health", s.handleHealth)
	r.GET("/ready", s.handleReady)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/feed.xml", s.handleSiteFeed)
	r.GET("/media/*path", s.handleMedia)

	api := r.Group("/api")
	{
		api.GET("/posts", s.handleListPosts)
		api.GET("/posts/:slug", s.handlePostDetail)
		api.POST("/posts/:slug/comments", s.handleAddComment)
		api.POST("/posts/:slug/like", s.handleLike)

		api.GET("/categories", s.handleCategories)
		api.GET("/categories/:slug/posts", s.handleCategoryPosts)
		api.GET("/categories/:slug/feed.xml", s.handleCategoryFeed)
		api.GET("/tags/:slug/posts", s.handleTagPosts)
		api.GET("/search", s.handleSearch)

		api.POST("/newsletter/subscribe", s.handleSubscribe)
		api.POST("/newsletter/unsubscribe", s.handleUnsubscribe)
		api.POST("/contact", s.handleContact)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.started).Round(time.Second).String(),
		"site":   s.cfg.Site.Title,
	})
}

func (s *Server) handleReady(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func (s *Server) handleListPosts(c *gin.Context) {
	posts, err := s.blog.ListPosts(c.Request.Context(), pageParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (s *Server) handlePostDetail(c *gin.Context) {
	detail, err := s.blog.PostDetail(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

type commentRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Comment string `json:"comment"`
}

func (s *Server) handleAddComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	comment, err := s.blog.AddComment(c.Request.Context(), c.Param("slug"),
		req.Name, req.Email, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"comment": comment,
		"note":    "your comment will appear after moderation",
	})
}

func (s *Server) handleLike(c *gin.Context) {
	likes, err := s.blog.Like(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"likes": likes})
}

func (s *Server) handleCategories(c *gin.Context) {
	categories, err := s.blog.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (s *Server) handleCategoryPosts(c *gin.Context) {
	category, posts, err := s.blog.CategoryPosts(c.Request.Context(), c.Param("slug"), pageParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category, "posts": posts})
}

func (s *Server) handleTagPosts(c *gin.Context) {
	posts, err := s.blog.TagPosts(c.Request.Context(), c.Param("slug"), pageParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (s *Server) handleSearch(c *gin.Context) {
	posts, err := s.blog.Search(c.Request.Context(), c.Query("q"), pageParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (s *Server) handleSiteFeed(c *gin.Context) {
	xml, err := s.blog.SiteFeed(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/atom+xml; charset=utf-8", xml)
}

func (s *Server) handleCategoryFeed(c *gin.Context) {
	xml, err := s.blog.CategoryFeed(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/atom+xml; charset=utf-8", xml)
}

func (s *Server) handleMedia(c *gin.Context) {
	p, err := s.media.Resolve(c.Param("path"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.File(p)
}

type emailRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleSubscribe(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	outcome, err := s.blog.Subscribe(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusCreated
	if outcome == store.SubscribedAlready {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"status": outcome})
}

func (s *Server) handleUnsubscribe(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := s.blog.Unsubscribe(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "unsubscribed"})
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (s *Server) handleContact(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	msg, err := s.blog.Contact(c.Request.Context(), req.Name, req.Email, req.Subject, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": msg.ID, "status": "received"})
}
