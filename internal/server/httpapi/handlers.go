package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/bacheca/internal/common"
	"github.com/dmitrijs2005/bacheca/internal/server/auth"
	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type passwordRequest struct {
	NewPassword string `json:"new_password"`
}

type postRequest struct {
	Content string `json:"content"`
}

func (s *Server) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "malformed request body"})
		return false
	}
	return true
}

func (s *Server) login(c *gin.Context) {
	var req credentialsRequest
	if !s.bind(c, &req) {
		return
	}

	session, identity, err := s.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}

	http.SetCookie(c.Writer, auth.SessionCookie(session.Token))
	c.JSON(http.StatusOK, identity)
}

func (s *Server) logout(c *gin.Context) {
	if err := s.auth.Logout(c.Request.Context(), auth.TokenFromRequest(c.Request)); err != nil {
		s.writeError(c, err)
		return
	}
	http.SetCookie(c.Writer, auth.ClearSessionCookie())
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (s *Server) me(c *gin.Context) {
	identity := identityOf(c)
	if identity == nil {
		s.writeError(c, common.ErrUnauthenticated)
		return
	}
	c.JSON(http.StatusOK, identity)
}

func (s *Server) listUsers(c *gin.Context) {
	list, err := s.users.List(c.Request.Context(), identityOf(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) createUser(c *gin.Context) {
	if err := auth.Authorize(identityOf(c), auth.Admin); err != nil {
		s.writeError(c, err)
		return
	}

	var req credentialsRequest
	if !s.bind(c, &req) {
		return
	}

	user, err := s.users.Create(c.Request.Context(), identityOf(c), req.Username, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) deleteUser(c *gin.Context) {
	if err := s.users.Delete(c.Request.Context(), identityOf(c), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

func (s *Server) updatePassword(c *gin.Context) {
	if err := auth.Authorize(identityOf(c), auth.Admin); err != nil {
		s.writeError(c, err)
		return
	}

	var req passwordRequest
	if !s.bind(c, &req) {
		return
	}

	if err := s.users.UpdatePassword(c.Request.Context(), identityOf(c), c.Param("id"), req.NewPassword); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

func (s *Server) listPosts(c *gin.Context) {
	list, err := s.posts.List(c.Request.Context(), identityOf(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) searchPosts(c *gin.Context) {
	list, err := s.posts.Search(c.Request.Context(), identityOf(c), c.Query("q"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) listUserPosts(c *gin.Context) {
	list, err := s.posts.ListByAuthor(c.Request.Context(), identityOf(c), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) createPost(c *gin.Context) {
	if err := auth.Authorize(identityOf(c), auth.Authenticated); err != nil {
		s.writeError(c, err)
		return
	}

	var req postRequest
	if !s.bind(c, &req) {
		return
	}

	post, err := s.posts.Create(c.Request.Context(), identityOf(c), req.Content)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (s *Server) deletePost(c *gin.Context) {
	if err := s.posts.Delete(c.Request.Context(), identityOf(c), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}
