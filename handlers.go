package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

/*** Error mapping shared across handlers ***/

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrUnknownArc), errors.Is(err, ErrUnknownRealm):
		return http.StatusNotFound
	case errors.Is(err, ErrArcLocked), errors.Is(err, ErrEvaluationPending), errors.Is(err, ErrQuizFinished):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func abortWith(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

type OptionReq struct {
	Option *int `json:"option"`
}

func bindOption(c *gin.Context) (int, bool) {
	var req OptionReq
	if err := c.BindJSON(&req); err != nil || req.Option == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "option required"})
		return 0, false
	}
	return *req.Option, true
}

func arcParam(c *gin.Context) (int, bool) {
	arc, err := strconv.Atoi(c.Param("arc"))
	if err != nil || !validArc(arc) {
		c.JSON(http.StatusNotFound, gin.H{"error": ErrUnknownArc.Error()})
		return 0, false
	}
	return arc, true
}

/*** Journey ***/

type ArcDTO struct {
	ArcView
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

func journeyDTO(v JourneyView) gin.H {
	arcs := make([]ArcDTO, 0, len(v.Arcs))
	for _, a := range v.Arcs {
		def, _ := arcDefinition(a.Arc)
		dto := ArcDTO{ArcView: a}
		// locked arcs do not reveal their question
		if a.Status != ArcLocked {
			dto.Question = def.Question
			dto.Options = def.Options
		}
		arcs = append(arcs, dto)
	}
	return gin.H{"arcs": arcs, "progress": v.Progress}
}

// GET /api/v1/journey
func GetJourney(t *Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, journeyDTO(t.View()))
	}
}

// POST /api/v1/journey/arcs/:arc/toggle
func ToggleArc(t *Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		arc, ok := arcParam(c)
		if !ok {
			return
		}
		expanded, err := t.ToggleExpansion(arc)
		if err != nil {
			abortWith(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"arc": arc, "expanded": expanded})
	}
}

// POST /api/v1/journey/arcs/:arc/select {"option": 2}
func SelectArcAnswer(t *Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		arc, ok := arcParam(c)
		if !ok {
			return
		}
		option, ok := bindOption(c)
		if !ok {
			return
		}
		if err := t.SelectAnswer(arc, option); err != nil {
			abortWith(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"arc": arc, "selected": option})
	}
}

// POST /api/v1/journey/arcs/:arc/submit
func SubmitArcAnswer(t *Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		arc, ok := arcParam(c)
		if !ok {
			return
		}
		def, _ := arcDefinition(arc)
		res, err := t.SubmitAnswer(arc, def.Correct)
		if err != nil {
			abortWith(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"result":  res,
			"journey": journeyDTO(t.View()),
		})
	}
}

type ResetReq struct {
	Confirm bool `json:"confirm"`
}

// POST /api/v1/journey/reset {"confirm": true}
func ResetJourney(t *Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ResetReq
		_ = c.ShouldBindJSON(&req)
		view, err := t.ResetAll(req.Confirm)
		if err != nil {
			abortWith(c, err)
			return
		}
		c.JSON(http.StatusOK, journeyDTO(view))
	}
}
