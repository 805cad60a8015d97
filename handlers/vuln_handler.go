// handlers/vuln_handler.go
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/monizb/vmp/authz"
	"github.com/monizb/vmp/logging"
	"github.com/monizb/vmp/middleware"
	"github.com/monizb/vmp/models"
	"github.com/monizb/vmp/sla"
	"github.com/monizb/vmp/utils"
	"github.com/monizb/vmp/websocket"
)

// ListVulns returns a paginated page of findings matched by the query
// filters: applicationId, reportId, status, internalStatus, severity,
// assignedTo, search.
func ListVulns(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	q := r.URL.Query()

	if raw := q.Get("applicationId"); raw != "" {
		appID, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid application id format")
			return
		}
		filter["applicationId"] = appID
	}
	if raw := q.Get("reportId"); raw != "" {
		reportID, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid report id format")
			return
		}
		filter["reportId"] = reportID
	}
	if status := q.Get("status"); status != "" {
		filter["status"] = status
	}
	if internalStatus := q.Get("internalStatus"); internalStatus != "" {
		filter["internalStatus"] = internalStatus
	}
	if severity := q.Get("severity"); severity != "" {
		filter["severity"] = severity
	}
	if raw := q.Get("assignedTo"); raw != "" {
		assigneeID, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid user id format")
			return
		}
		filter["assignedToUserId"] = assigneeID
	}
	if search := q.Get("search"); search != "" {
		regex := bson.M{"$regex": search, "$options": "i"}
		filter["$or"] = []bson.M{{"title": regex}, {"description": regex}}
	}

	pagination := utils.ParsePagination(r)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	total, err := vulnCollection.CountDocuments(ctx, filter)
	if err != nil {
		logging.Logger.Errorf("vulns count error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "discoveredDate", Value: -1}}).
		SetSkip(pagination.Skip()).
		SetLimit(pagination.Limit())

	vulns, err := findVulns(ctx, filter, opts)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.PaginatedResponse{
		Items:    vulns,
		Total:    total,
		Page:     pagination.Page,
		PageSize: pagination.PageSize,
	})
}

func GetVuln(w http.ResponseWriter, r *http.Request) {
	vulnID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid vulnerability id format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var vuln models.Vulnerability
	err = vulnCollection.FindOne(ctx, bson.M{"_id": vulnID}).Decode(&vuln)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Vulnerability not found")
			return
		}
		logging.Logger.Errorf("find vulnerability error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, vuln)
}

type createVulnRequest struct {
	ApplicationID    string     `json:"applicationId"`
	ReportID         string     `json:"reportId"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Severity         string     `json:"severity"`
	CVSSScore        *float64   `json:"cvssScore"`
	CVSSVector       string     `json:"cvssVector"`
	CWE              []string   `json:"cwe"`
	CVE              []string   `json:"cve"`
	Status           string     `json:"status"`
	InternalStatus   string     `json:"internalStatus"`
	DiscoveredDate   *time.Time `json:"discoveredDate"`
	DueDate          *time.Time `json:"dueDate"`
	AssignedToUserID string     `json:"assignedToUserId"`
	Tags             []string   `json:"tags"`
}

// buildVuln validates a create payload and assembles the document,
// computing a due date when none was supplied manually.
func buildVuln(ctx context.Context, req createVulnRequest) (*models.Vulnerability, string) {
	if req.Title == "" || req.Description == "" || req.Severity == "" || req.ApplicationID == "" {
		return nil, "Title, description, severity, and application ID are required"
	}

	appID, err := primitive.ObjectIDFromHex(req.ApplicationID)
	if err != nil {
		return nil, "invalid application id format"
	}

	now := time.Now().UTC()
	discovered := now
	if req.DiscoveredDate != nil {
		discovered = *req.DiscoveredDate
	}

	vuln := models.Vulnerability{
		ID:             primitive.NewObjectID(),
		ApplicationID:  appID,
		Title:          req.Title,
		Description:    req.Description,
		Severity:       req.Severity,
		CVSSScore:      req.CVSSScore,
		CVSSVector:     req.CVSSVector,
		CWE:            req.CWE,
		CVE:            req.CVE,
		Status:         req.Status,
		InternalStatus: req.InternalStatus,
		DiscoveredDate: discovered,
		DueDate:        req.DueDate,
		Tags:           req.Tags,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if vuln.Status == "" {
		vuln.Status = models.StatusNew
	}
	if vuln.CWE == nil {
		vuln.CWE = []string{}
	}
	if vuln.CVE == nil {
		vuln.CVE = []string{}
	}
	if vuln.Tags == nil {
		vuln.Tags = []string{}
	}
	if req.ReportID != "" {
		reportID, err := primitive.ObjectIDFromHex(req.ReportID)
		if err != nil {
			return nil, "invalid report id format"
		}
		vuln.ReportID = &reportID
	}
	if req.AssignedToUserID != "" {
		assigneeID, err := primitive.ObjectIDFromHex(req.AssignedToUserID)
		if err != nil {
			return nil, "invalid assignee user id format"
		}
		vuln.AssignedToUserID = &assigneeID
	}

	// A manual due date always wins; the engine only fills the gap.
	if vuln.DueDate == nil {
		settings, err := getOrCreateSettings(ctx)
		if err != nil {
			logging.Logger.Errorf("settings read error: %v", err)
		} else {
			vuln.DueDate = sla.ComputeDueDate(settings, vuln.Severity, vuln.DiscoveredDate)
		}
	}

	return &vuln, ""
}

// CreateVuln records a new finding. Admin or Security only.
func CreateVuln(w http.ResponseWriter, r *http.Request) {
	var req createVulnRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	vuln, msg := buildVuln(ctx, req)
	if vuln == nil {
		utils.RespondWithError(w, http.StatusBadRequest, msg)
		return
	}

	if _, err := vulnCollection.InsertOne(ctx, vuln); err != nil {
		logging.Logger.Errorf("insert vulnerability error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to create vulnerability")
		return
	}

	if p := middleware.PrincipalFrom(r.Context()); p != nil {
		websocket.SendVulnCreated(vuln, p.ID)
	}

	utils.RespondWithJSON(w, http.StatusCreated, vuln)
}

// BulkCreateVulns records several findings at once, typically from a
// parsed vendor report. All-or-nothing validation: any bad entry rejects
// the batch before anything is inserted.
func BulkCreateVulns(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Vulnerabilities []createVulnRequest `json:"vulnerabilities"`
	}
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if len(req.Vulnerabilities) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Vulnerabilities array is required and must not be empty")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	vulns := make([]models.Vulnerability, 0, len(req.Vulnerabilities))
	docs := make([]interface{}, 0, len(req.Vulnerabilities))
	for _, entry := range req.Vulnerabilities {
		vuln, msg := buildVuln(ctx, entry)
		if vuln == nil {
			utils.RespondWithError(w, http.StatusBadRequest, msg)
			return
		}
		vulns = append(vulns, *vuln)
		docs = append(docs, vuln)
	}

	if _, err := vulnCollection.InsertMany(ctx, docs); err != nil {
		logging.Logger.Errorf("bulk insert error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to create vulnerabilities")
		return
	}

	if p := middleware.PrincipalFrom(r.Context()); p != nil {
		for i := range vulns {
			websocket.SendVulnCreated(&vulns[i], p.ID)
		}
	}

	utils.RespondWithJSON(w, http.StatusCreated, vulns)
}

type updateVulnRequest struct {
	Title            *string    `json:"title"`
	Description      *string    `json:"description"`
	Severity         *string    `json:"severity"`
	CVSSScore        *float64   `json:"cvssScore"`
	CVSSVector       *string    `json:"cvssVector"`
	CWE              *[]string  `json:"cwe"`
	CVE              *[]string  `json:"cve"`
	Status           *string    `json:"status"`
	InternalStatus   *string    `json:"internalStatus"`
	DueDate          *time.Time `json:"dueDate"`
	ResolvedDate     *time.Time `json:"resolvedDate"`
	AssignedToUserID *string    `json:"assignedToUserId"`
	Tags             *[]string  `json:"tags"`
}

// UpdateVuln patches a finding. Admin and Security may update anything;
// other roles only findings assigned to them. A due date is recomputed
// on severity change only when the document has none and the request
// does not supply one — manual dates are never silently overwritten.
func UpdateVuln(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFrom(r.Context())
	if principal == nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	vulnID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid vulnerability id format")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	// Raw keys distinguish "field absent" from "field set to null" so an
	// explicit dueDate:null clears the date instead of being ignored.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	var req updateVulnRequest
	if err := json.Unmarshal(body, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var current models.Vulnerability
	err = vulnCollection.FindOne(ctx, bson.M{"_id": vulnID}).Decode(&current)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Vulnerability not found")
			return
		}
		logging.Logger.Errorf("find vulnerability error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	assignee := ""
	if current.AssignedToUserID != nil {
		assignee = current.AssignedToUserID.Hex()
	}
	if err := authz.AuthorizeOwnership(principal, assignee); err != nil {
		utils.RespondWithError(w, http.StatusForbidden, "You do not have permission to update this vulnerability")
		return
	}

	update := bson.M{"updatedAt": time.Now().UTC()}
	if req.Title != nil {
		update["title"] = *req.Title
	}
	if req.Description != nil {
		update["description"] = *req.Description
	}
	if req.CVSSScore != nil {
		update["cvssScore"] = *req.CVSSScore
	}
	if req.CVSSVector != nil {
		update["cvssVector"] = *req.CVSSVector
	}
	if req.CWE != nil {
		update["cwe"] = *req.CWE
	}
	if req.CVE != nil {
		update["cve"] = *req.CVE
	}
	if req.InternalStatus != nil {
		update["internalStatus"] = *req.InternalStatus
	}
	if req.Tags != nil {
		update["tags"] = *req.Tags
	}

	_, dueDateProvided := raw["dueDate"]
	if dueDateProvided {
		update["dueDate"] = req.DueDate
	}
	if _, ok := raw["resolvedDate"]; ok {
		update["resolvedDate"] = req.ResolvedDate
	}

	if req.AssignedToUserID != nil {
		if *req.AssignedToUserID == "" {
			update["assignedToUserId"] = nil
		} else {
			assigneeID, err := primitive.ObjectIDFromHex(*req.AssignedToUserID)
			if err != nil {
				utils.RespondWithError(w, http.StatusBadRequest, "invalid assignee user id format")
				return
			}
			update["assignedToUserId"] = assigneeID
		}
	}

	if req.Status != nil {
		update["status"] = *req.Status
		// A finding moved to Fixed gets its resolution stamped unless the
		// caller set one explicitly.
		if *req.Status == models.StatusFixed && current.ResolvedDate == nil {
			if _, ok := raw["resolvedDate"]; !ok {
				now := time.Now().UTC()
				update["resolvedDate"] = now
			}
		}
	}

	if req.Severity != nil {
		update["severity"] = *req.Severity
		if *req.Severity != current.Severity && current.DueDate == nil && !dueDateProvided {
			settings, err := getOrCreateSettings(ctx)
			if err != nil {
				logging.Logger.Errorf("settings read error: %v", err)
			} else if due := sla.ComputeDueDate(settings, *req.Severity, current.DiscoveredDate); due != nil {
				update["dueDate"] = due
			}
		}
	}

	var updated models.Vulnerability
	err = vulnCollection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": vulnID},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		logging.Logger.Errorf("update vulnerability error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to update vulnerability")
		return
	}

	websocket.SendVulnUpdated(vulnID.Hex(), updated, principal.ID)

	utils.RespondWithJSON(w, http.StatusOK, updated)
}

// DeleteVuln removes a finding. Admin or Security only.
func DeleteVuln(w http.ResponseWriter, r *http.Request) {
	vulnID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid vulnerability id format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := vulnCollection.DeleteOne(ctx, bson.M{"_id": vulnID})
	if err != nil {
		logging.Logger.Errorf("delete vulnerability error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to delete vulnerability")
		return
	}
	if result.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Vulnerability not found")
		return
	}

	if p := middleware.PrincipalFrom(r.Context()); p != nil {
		websocket.SendVulnDeleted(vulnID.Hex(), p.ID)
	}

	w.WriteHeader(http.StatusNoContent)
}

func findVulns(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Vulnerability, error) {
	var cursor *mongo.Cursor
	var err error
	if opts != nil {
		cursor, err = vulnCollection.Find(ctx, filter, opts)
	} else {
		cursor, err = vulnCollection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "discoveredDate", Value: -1}}))
	}
	if err != nil {
		logging.Logger.Errorf("vulns Find error: %v", err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var vulns []models.Vulnerability
	if err = cursor.All(ctx, &vulns); err != nil {
		logging.Logger.Errorf("cursor decode error: %v", err)
		return nil, err
	}
	if vulns == nil {
		vulns = []models.Vulnerability{}
	}
	return vulns, nil
}

func respondWithVulnList(w http.ResponseWriter, r *http.Request, filter bson.M) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	vulns, err := findVulns(ctx, filter, nil)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, vulns)
}

func GetVulnsByApplication(w http.ResponseWriter, r *http.Request) {
	appID, err := primitive.ObjectIDFromHex(mux.Vars(r)["applicationId"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid application id format")
		return
	}
	respondWithVulnList(w, r, bson.M{"applicationId": appID})
}

func GetVulnsByReport(w http.ResponseWriter, r *http.Request) {
	reportID, err := primitive.ObjectIDFromHex(mux.Vars(r)["reportId"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid report id format")
		return
	}
	respondWithVulnList(w, r, bson.M{"reportId": reportID})
}

func GetVulnsByStatus(w http.ResponseWriter, r *http.Request) {
	respondWithVulnList(w, r, bson.M{"status": mux.Vars(r)["status"]})
}

func GetVulnsBySeverity(w http.ResponseWriter, r *http.Request) {
	respondWithVulnList(w, r, bson.M{"severity": mux.Vars(r)["severity"]})
}

func GetVulnsByAssignee(w http.ResponseWriter, r *http.Request) {
	assigneeID, err := primitive.ObjectIDFromHex(mux.Vars(r)["userId"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid user id format")
		return
	}
	respondWithVulnList(w, r, bson.M{"assignedToUserId": assigneeID})
}

// activeWithDueDate narrows candidates in Mongo before the SLA engine
// makes the final call: statuses outside the exempt set and a due date
// present.
func activeWithDueDate() bson.M {
	return bson.M{
		"status":  bson.M{"$nin": []string{models.StatusFixed, models.StatusClosed}},
		"dueDate": bson.M{"$ne": nil},
	}
}

// GetOverdueVulns lists findings whose due date has passed.
func GetOverdueVulns(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	candidates, err := findVulns(ctx, activeWithDueDate(), nil)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	now := time.Now().UTC()
	overdue := []models.Vulnerability{}
	for _, v := range candidates {
		if sla.IsOverdue(v, now) {
			overdue = append(overdue, v)
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, overdue)
}

// GetDueThisWeek lists findings coming due within the next seven days.
func GetDueThisWeek(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	candidates, err := findVulns(ctx, activeWithDueDate(), nil)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	now := time.Now().UTC()
	upcoming := []models.Vulnerability{}
	for _, v := range candidates {
		if sla.IsDueWithinWindow(v, now, sla.DefaultDueSoonWindowDays) {
			upcoming = append(upcoming, v)
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, upcoming)
}

// GetUpcomingRetests lists fixed findings whose retest window opens
// within the lookahead period.
func GetUpcomingRetests(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	candidates, err := findVulns(ctx, bson.M{
		"status":       models.StatusFixed,
		"resolvedDate": bson.M{"$ne": nil},
	}, nil)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	now := time.Now().UTC()
	retests := []models.Vulnerability{}
	for _, v := range candidates {
		if sla.IsRetestEligible(v, now, sla.DefaultRetestOffsetDays, sla.DefaultRetestLookaheadDays) {
			retests = append(retests, v)
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, retests)
}

// GetVulnStats summarises the register for the dashboard: totals by
// severity and status plus the SLA counters.
func GetVulnStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	vulns, err := findVulns(ctx, bson.M{}, nil)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	now := time.Now().UTC()
	bySeverity := map[string]int{}
	byStatus := map[string]int{}
	open, overdue, dueThisWeek, upcomingRetests := 0, 0, 0, 0

	for _, v := range vulns {
		bySeverity[v.Severity]++
		byStatus[v.Status]++
		if v.Status != models.StatusFixed && v.Status != models.StatusClosed {
			open++
		}
		if sla.IsOverdue(v, now) {
			overdue++
		}
		if sla.IsDueWithinWindow(v, now, sla.DefaultDueSoonWindowDays) {
			dueThisWeek++
		}
		if sla.IsRetestEligible(v, now, sla.DefaultRetestOffsetDays, sla.DefaultRetestLookaheadDays) {
			upcomingRetests++
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"total":           len(vulns),
		"open":            open,
		"overdue":         overdue,
		"dueThisWeek":     dueThisWeek,
		"upcomingRetests": upcomingRetests,
		"bySeverity":      bySeverity,
		"byStatus":        byStatus,
	})
}
