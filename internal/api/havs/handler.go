package havs

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fieldops-app/config"
	"fieldops-app/database"
	"fieldops-app/internal/api/apierr"
	"fieldops-app/internal/domain/havs"
	"fieldops-app/internal/infra/archive"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var archiver archive.Archiver = archive.Noop{}

// UseArchiver sets where submitted weeks are copied to.
func UseArchiver(a archive.Archiver) {
	if a == nil {
		a = archive.Noop{}
	}
	archiver = a
}

func mustEmployeeID(c *gin.Context) (uint, bool) {
	id := c.GetUint("employee_id")
	if id == 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": "No employee profile for this account"})
		return 0, false
	}
	return id, true
}

// GET /havs/week-ending?date=YYYY-MM-DD
func GetWeekEnding(c *gin.Context) {
	raw := c.Query("date")
	date := havs.NewDate(time.Now())
	if raw != "" {
		d, err := havs.ParseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		date = d
	}
	c.JSON(http.StatusOK, WeekEndingDTO{Date: date, WeekEnding: havs.WeekEndingFor(date)})
}

// GET /havs/equipment
func ListEquipment(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": havs.Catalog()})
}

// GET /havs/weeks
func ListWeeks(c *gin.Context) {
	gangerID, ok := mustEmployeeID(c)
	if !ok {
		return
	}
	weeks, err := havs.ListWeeks(c.Request.Context(), database.DB, gangerID)
	if err != nil {
		apierr.Respond(c, err, "Failed to load weeks")
		return
	}
	c.JSON(http.StatusOK, gin.H{"weeks": weeks})
}

// GET /havs/weeks/:id
func GetWeek(c *gin.Context) {
	gangerID, ok := mustEmployeeID(c)
	if !ok {
		return
	}
	d, err := havs.LoadOwnedDetails(c.Request.Context(), database.DB, gangerID, c.Param("id"))
	if err != nil {
		apierr.Respond(c, err, "Failed to load week")
		return
	}
	c.JSON(http.StatusOK, d)
}

// GET /havs/weeks/:id/revisions/:number
func GetRevision(c *gin.Context) {
	gangerID, ok := mustEmployeeID(c)
	if !ok {
		return
	}
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid revision number"})
		return
	}

	ctx := c.Request.Context()
	if _, err := havs.LoadOwnedDetails(ctx, database.DB, gangerID, c.Param("id")); err != nil {
		apierr.Respond(c, err, "Failed to load week")
		return
	}
	snap, err := havs.LoadRevision(ctx, database.DB, c.Param("id"), number)
	if err != nil {
		apierr.Respond(c, err, "Failed to load revision")
		return
	}
	c.JSON(http.StatusOK, snap)
}

// PUT /havs/weeks/:id/entries
func SaveEntries(c *gin.Context) {
	gangerID, ok := mustEmployeeID(c)
	if !ok {
		return
	}
	var body entriesRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := havs.SaveEntries(c.Request.Context(), database.DB, gangerID, c.Param("id"), body.Entries)
	if err != nil {
		apierr.Respond(c, err, "Failed to save entries")
		return
	}
	c.JSON(http.StatusOK, res)
}

// PUT /havs/weeks/:id/notes
func UpdateNotes(c *gin.Context) {
	gangerID, ok := mustEmployeeID(c)
	if !ok {
		return
	}
	var body notesRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := havs.UpdateNotes(c.Request.Context(), database.DB, gangerID, c.Param("id"), body.Notes); err != nil {
		apierr.Respond(c, err, "Failed to update notes")
		return
	}
	c.JSON(http.StatusOK, gin.H{"notes": body.Notes})
}

// POST /havs/weeks/:id/members
func AddMember(c *gin.Context) {
	gangerID, ok := mustEmployeeID(c)
	if !ok {
		return
	}
	var body addMemberRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hasName := body.ManualName != nil && strings.TrimSpace(*body.ManualName) != ""
	if (body.EmployeeID == nil) == !hasName {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provide either employee_id or manual_name"})
		return
	}

	ctx := c.Request.Context()
	var (
		m   *havs.Member
		err error
	)
	if body.EmployeeID != nil {
		m, err = havs.AddEmployeeOperative(ctx, database.DB, gangerID, c.Param("id"), *body.EmployeeID)
	} else {
		m, err = havs.AddManualOperative(ctx, database.DB, gangerID, c.Param("id"), *body.ManualName)
	}
	if err != nil {
		apierr.Respond(c, err, "Failed to add member")
		return
	}
	c.JSON(http.StatusCreated, toMemberDTO(*m))
}

// DELETE /havs/weeks/:id/members/:memberId?confirm=true
func RemoveMember(c *gin.Context) {
	gangerID, ok := mustEmployeeID(c)
	if !ok {
		return
	}
	confirmed, _ := strconv.ParseBool(c.Query("confirm"))

	err := havs.RemoveOperative(c.Request.Context(), database.DB, gangerID, c.Param("id"), c.Param("memberId"), confirmed)
	if err != nil {
		apierr.Respond(c, err, "Failed to remove member")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GET /havs/employees?week_id=
func ListAvailableOperatives(c *gin.Context) {
	gangerID, ok := mustEmployeeID(c)
	if !ok {
		return
	}
	weekID := c.Query("week_id")
	if weekID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "week_id is required"})
		return
	}

	emps, err := havs.AvailableOperatives(c.Request.Context(), database.DB, gangerID, weekID)
	if err != nil {
		apierr.Respond(c, err, "Failed to load employees")
		return
	}
	out := make([]OperativeDTO, 0, len(emps))
	for _, e := range emps {
		out = append(out, OperativeDTO{ID: e.ID, FirstName: e.FirstName, LastName: e.LastName, Role: e.Role})
	}
	c.JSON(http.StatusOK, gin.H{"employees": out})
}

// POST /havs/weeks/:id/submit
func SubmitWeek(c *gin.Context) {
	gangerID, ok := mustEmployeeID(c)
	if !ok {
		return
	}
	var body havs.SubmitInput
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	d, err := havs.SubmitWeek(c.Request.Context(), database.DB, gangerID, c.Param("id"), body)
	if err != nil {
		apierr.Respond(c, err, "Failed to submit week")
		return
	}

	archiveSubmission(c.Request.Context(), d)
	c.JSON(http.StatusOK, d)
}

// archiveSubmission is best effort; the submission already stands.
func archiveSubmission(ctx context.Context, d *havs.WeekDetails) {
	key, err := archive.Week(ctx, archiver, config.App.Archive.Prefix, d)
	if err != nil {
		zap.L().Warn("archive submitted week", zap.String("week_id", d.ID), zap.Error(err))
		return
	}
	zap.L().Info("archived submitted week", zap.String("week_id", d.ID), zap.String("key", key))
}

// GET /havs/weeks/:id/export.csv
func ExportWeek(c *gin.Context) {
	gangerID, ok := mustEmployeeID(c)
	if !ok {
		return
	}
	d, err := havs.LoadOwnedDetails(c.Request.Context(), database.DB, gangerID, c.Param("id"))
	if err != nil {
		apierr.Respond(c, err, "Failed to load week")
		return
	}
	WriteExport(c, d)
}

// WriteExport sends d as a CSV attachment.
func WriteExport(c *gin.Context, d *havs.WeekDetails) {
	var buf bytes.Buffer
	if err := havs.WriteCSV(&buf, havs.ExportRows(d)); err != nil {
		apierr.Respond(c, err, "Failed to build export")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+havs.ExportFilename(d)+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
