package routes

import (
	"log"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/rm-hull/l8tefuel-api/internal"
	"github.com/rm-hull/l8tefuel-api/internal/auth"
	"github.com/rm-hull/l8tefuel-api/internal/models"
)

func Login(repo internal.Repository, issuer *auth.TokenIssuer) func(c *gin.Context) {
	return func(c *gin.Context) {
		var req models.CredentialsRequest
		if err := c.ShouldBindWith(&req, binding.Form); err != nil {
			badRequest(c, err)
			return
		}

		user, err := repo.GetUser(c.Request.Context(), req.Username)
		if err != nil && !errors.Is(err, internal.ErrNotFound) {
			abortWithError(c, "login", err)
			return
		}
		if user == nil || !auth.VerifyPassword(user.HashedPassword, req.Password) {
			c.Header("WWW-Authenticate", "Bearer")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect username or password"})
			return
		}

		token, err := issuer.Issue(user.Username)
		if err != nil {
			abortWithError(c, "login", err)
			return
		}

		c.JSON(http.StatusOK, models.TokenResponse{
			AccessToken: token,
			TokenType:   auth.TokenType,
			IsAdmin:     user.IsAdmin,
		})
	}
}

func CreateUser(repo internal.Repository) func(c *gin.Context) {
	return func(c *gin.Context) {
		var req models.CredentialsRequest
		if err := c.ShouldBindWith(&req, binding.Form); err != nil {
			badRequest(c, err)
			return
		}

		hashed, err := auth.HashPassword(req.Password)
		if err != nil {
			abortWithError(c, "create user", err)
			return
		}

		if _, err := repo.CreateUser(c.Request.Context(), req.Username, hashed, false); err != nil {
			abortWithError(c, "create user", err)
			return
		}

		log.Printf("user %q created by %q", req.Username, auth.CurrentUser(c).Username)
		c.JSON(http.StatusCreated, models.MessageResponse{Message: "User created successfully"})
	}
}

func ListUsers(repo internal.Repository) func(c *gin.Context) {
	return func(c *gin.Context) {
		users, err := repo.ListUsers(c.Request.Context())
		if err != nil {
			abortWithError(c, "list users", err)
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

func ResetPassword(repo internal.Repository) func(c *gin.Context) {
	return func(c *gin.Context) {
		var req models.NewPasswordRequest
		if err := c.ShouldBindWith(&req, binding.Form); err != nil {
			badRequest(c, err)
			return
		}

		hashed, err := auth.HashPassword(req.NewPassword)
		if err != nil {
			abortWithError(c, "reset password", err)
			return
		}

		if err := repo.UpdatePassword(c.Request.Context(), c.Param("username"), hashed); err != nil {
			abortWithError(c, "User", err)
			return
		}
		c.JSON(http.StatusOK, models.MessageResponse{Message: "Password reset successfully"})
	}
}
