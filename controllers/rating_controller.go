package controllers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"ratehub/services"
	"ratehub/structs"

	"github.com/gin-gonic/gin"
)

// RatingController handles rating submissions and summary queries.
type RatingController struct {
	service  *services.RatingService
	verifier *services.Verifier
}

func NewRatingController(service *services.RatingService, verifier *services.Verifier) *RatingController {
	return &RatingController{service: service, verifier: verifier}
}

// SubmitRating handles POST /api/rating
func (rc *RatingController) SubmitRating(c *gin.Context) {
	var req structs.RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid rating token"})
		return
	}

	claims, err := rc.verifier.Verify(req.Token)
	if err != nil {
		if errors.Is(err, services.ErrVerifierNotReady) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Service not ready"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid rating token"})
		return
	}

	err = rc.service.Submit(c.Request.Context(), claims, time.Now())
	switch {
	case err == nil:
		log.Printf("Rating recorded: %s -> %s = %s", claims.ClientID, claims.TargetClientID, claims.Emoji)
		c.JSON(http.StatusOK, gin.H{"success": true})
	case errors.Is(err, services.ErrInvalidClaims):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid rating token"})
	case errors.Is(err, services.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"success": false, "message": "Already rated recently"})
	default:
		var partial *services.PartialStatsError
		if errors.As(err, &partial) {
			// The event is already durable; only the counters are behind.
			log.Printf("Partial stats failure: %v", partial)
		} else {
			log.Printf("Rating submission failed: %v", err)
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Database not ready"})
	}
}

// GetSummary handles POST /api/summary
func (rc *RatingController) GetSummary(c *gin.Context) {
	var req structs.SummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "clientIds is required"})
		return
	}

	result, err := rc.service.Summarize(c.Request.Context(), req.ClientIDs)
	if err != nil {
		log.Printf("Summary query failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Database not ready"})
		return
	}

	c.JSON(http.StatusOK, result)
}
