// handlers/report_handler.go
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/monizb/vmp/logging"
	"github.com/monizb/vmp/models"
	"github.com/monizb/vmp/utils"
)

// ListReports returns a paginated page of report metadata, newest upload
// first. Filters: applicationId, parsed, reportType, year.
func ListReports(w http.ResponseWriter, r *http.Request) {
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
	if raw := q.Get("parsed"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "parsed must be true or false")
			return
		}
		filter["parsed"] = parsed
	}
	if reportType := q.Get("reportType"); reportType != "" {
		filter["reportType"] = reportType
	}
	if raw := q.Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "year must be a number")
			return
		}
		filter["year"] = year
	}

	pagination := utils.ParsePagination(r)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	total, err := reportCollection.CountDocuments(ctx, filter)
	if err != nil {
		logging.Logger.Errorf("reports count error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "dateUploaded", Value: -1}}).
		SetSkip(pagination.Skip()).
		SetLimit(pagination.Limit())

	reports, err := findReports(ctx, filter, opts)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.PaginatedResponse{
		Items:    reports,
		Total:    total,
		Page:     pagination.Page,
		PageSize: pagination.PageSize,
	})
}

func GetReport(w http.ResponseWriter, r *http.Request) {
	reportID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid report id format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var report models.Report
	err = reportCollection.FindOne(ctx, bson.M{"_id": reportID}).Decode(&report)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Report not found")
			return
		}
		logging.Logger.Errorf("find report error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, report)
}

type reportRequest struct {
	DriveFileID      string     `json:"driveFileId"`
	FileName         string     `json:"fileName"`
	VendorName       string     `json:"vendorName"`
	ApplicationID    string     `json:"applicationId"`
	ReportDate       *time.Time `json:"reportDate"`
	ReportType       string     `json:"reportType"`
	OriginalReportID string     `json:"originalReportId"`
	Year             int        `json:"year"`
}

func CreateReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if req.FileName == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "File name is required")
		return
	}
	if req.ReportType != "" && req.ReportType != models.ReportTypeInitial && req.ReportType != models.ReportTypeReconfirmatory {
		utils.RespondWithError(w, http.StatusBadRequest, "Report type must be initial or reconfirmatory")
		return
	}

	now := time.Now().UTC()
	report := models.Report{
		ID:               primitive.NewObjectID(),
		DriveFileID:      req.DriveFileID,
		FileName:         req.FileName,
		VendorName:       req.VendorName,
		DateUploaded:     now,
		ReportDate:       req.ReportDate,
		Parsed:           false,
		VulnerabilityIDs: []string{},
		ReportType:       req.ReportType,
		Year:             req.Year,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if report.ReportType == "" {
		report.ReportType = models.ReportTypeInitial
	}
	if report.Year == 0 {
		report.Year = now.Year()
	}
	if req.ApplicationID != "" {
		appID, err := primitive.ObjectIDFromHex(req.ApplicationID)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid application id format")
			return
		}
		report.ApplicationID = &appID
	}
	if req.OriginalReportID != "" {
		origID, err := primitive.ObjectIDFromHex(req.OriginalReportID)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid original report id format")
			return
		}
		report.OriginalReportID = &origID
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if _, err := reportCollection.InsertOne(ctx, report); err != nil {
		logging.Logger.Errorf("insert report error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to create report")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, report)
}

func UpdateReport(w http.ResponseWriter, r *http.Request) {
	reportID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid report id format")
		return
	}

	var req struct {
		DriveFileID      *string    `json:"driveFileId,omitempty"`
		FileName         *string    `json:"fileName,omitempty"`
		VendorName       *string    `json:"vendorName,omitempty"`
		ApplicationID    *string    `json:"applicationId,omitempty"`
		ReportDate       *time.Time `json:"reportDate,omitempty"`
		Parsed           *bool      `json:"parsed,omitempty"`
		VulnerabilityIDs *[]string  `json:"vulnerabilityIds,omitempty"`
		ReportType       *string    `json:"reportType,omitempty"`
		Year             *int       `json:"year,omitempty"`
	}
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	update := bson.M{"updatedAt": time.Now().UTC()}
	if req.DriveFileID != nil {
		update["driveFileId"] = *req.DriveFileID
	}
	if req.FileName != nil {
		update["fileName"] = *req.FileName
	}
	if req.VendorName != nil {
		update["vendorName"] = *req.VendorName
	}
	if req.ReportDate != nil {
		update["reportDate"] = *req.ReportDate
	}
	if req.Parsed != nil {
		update["parsed"] = *req.Parsed
	}
	if req.VulnerabilityIDs != nil {
		update["vulnerabilityIds"] = *req.VulnerabilityIDs
	}
	if req.Year != nil {
		update["year"] = *req.Year
	}
	if req.ReportType != nil {
		if *req.ReportType != models.ReportTypeInitial && *req.ReportType != models.ReportTypeReconfirmatory {
			utils.RespondWithError(w, http.StatusBadRequest, "Report type must be initial or reconfirmatory")
			return
		}
		update["reportType"] = *req.ReportType
	}
	if req.ApplicationID != nil {
		if *req.ApplicationID == "" {
			update["applicationId"] = nil
		} else {
			appID, err := primitive.ObjectIDFromHex(*req.ApplicationID)
			if err != nil {
				utils.RespondWithError(w, http.StatusBadRequest, "invalid application id format")
				return
			}
			update["applicationId"] = appID
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var report models.Report
	err = reportCollection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": reportID},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&report)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Report not found")
			return
		}
		logging.Logger.Errorf("update report error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to update report")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, report)
}

func DeleteReport(w http.ResponseWriter, r *http.Request) {
	reportID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid report id format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := reportCollection.DeleteOne(ctx, bson.M{"_id": reportID})
	if err != nil {
		logging.Logger.Errorf("delete report error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to delete report")
		return
	}
	if result.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Report not found")
		return
	}

	// Findings extracted from the report survive its deletion; only the
	// back-reference goes away.
	if _, err := vulnCollection.UpdateMany(ctx, bson.M{"reportId": reportID}, bson.M{"$unset": bson.M{"reportId": ""}}); err != nil {
		logging.Logger.Warnf("unlink vulnerabilities failed: %v", err)
	}

	w.WriteHeader(http.StatusNoContent)
}

// ImportReport accepts a vendor report for ingestion and answers
// immediately with the created metadata document. The actual PDF fetch
// and parse pipeline is not built yet; a placeholder job marks the
// report parsed shortly after.
func ImportReport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DriveFileID   string `json:"driveFileId"`
		VendorName    string `json:"vendorName"`
		ApplicationID string `json:"applicationId"`
	}
	// The import endpoint tolerates an empty body; everything has a default.
	_ = utils.ParseJSON(r, &req)

	now := time.Now().UTC()
	report := models.Report{
		ID:               primitive.NewObjectID(),
		DriveFileID:      req.DriveFileID,
		FileName:         fmt.Sprintf("VAPT_Report_%d.pdf", now.Unix()),
		VendorName:       req.VendorName,
		DateUploaded:     now,
		Parsed:           false,
		VulnerabilityIDs: []string{},
		ReportType:       models.ReportTypeInitial,
		Year:             now.Year(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if req.ApplicationID != "" {
		appID, err := primitive.ObjectIDFromHex(req.ApplicationID)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid application id format")
			return
		}
		report.ApplicationID = &appID
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if _, err := reportCollection.InsertOne(ctx, report); err != nil {
		logging.Logger.Errorf("insert report error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to start import")
		return
	}

	go simulateParseJob(report.ID)

	utils.RespondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Import started",
		"jobId":   report.ID.Hex(),
		"report":  report,
	})
}

// simulateParseJob stands in for the parser pipeline: after a short
// delay it flips the report to parsed with placeholder finding ids.
func simulateParseJob(reportID primitive.ObjectID) {
	time.Sleep(2 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	placeholder := []string{
		primitive.NewObjectID().Hex(),
		primitive.NewObjectID().Hex(),
	}
	_, err := reportCollection.UpdateOne(ctx, bson.M{"_id": reportID}, bson.M{"$set": bson.M{
		"parsed":           true,
		"vulnerabilityIds": placeholder,
		"updatedAt":        time.Now().UTC(),
	}})
	if err != nil {
		logging.Logger.Warnf("parse job update failed for report %s: %v", reportID.Hex(), err)
		return
	}
	logging.Logger.Infow("report parse job finished", "reportId", reportID.Hex())
}

func findReports(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Report, error) {
	if opts == nil {
		opts = options.Find().SetSort(bson.D{{Key: "dateUploaded", Value: -1}})
	}
	cursor, err := reportCollection.Find(ctx, filter, opts)
	if err != nil {
		logging.Logger.Errorf("reports Find error: %v", err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var reports []models.Report
	if err = cursor.All(ctx, &reports); err != nil {
		logging.Logger.Errorf("cursor decode error: %v", err)
		return nil, err
	}
	if reports == nil {
		reports = []models.Report{}
	}
	return reports, nil
}

func GetReportsByApplication(w http.ResponseWriter, r *http.Request) {
	appID, err := primitive.ObjectIDFromHex(mux.Vars(r)["applicationId"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid application id format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	reports, err := findReports(ctx, bson.M{"applicationId": appID}, nil)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, reports)
}

func GetReportsByYear(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(mux.Vars(r)["year"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "year must be a number")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	reports, err := findReports(ctx, bson.M{"year": year}, nil)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, reports)
}

// GetReconfirmatoryReports lists the retest chain for a report: every
// reconfirmatory report pointing back at it.
func GetReconfirmatoryReports(w http.ResponseWriter, r *http.Request) {
	reportID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid report id format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	reports, err := findReports(ctx, bson.M{
		"reportType":       models.ReportTypeReconfirmatory,
		"originalReportId": reportID,
	}, nil)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, reports)
}

// MarkReportParsed records the outcome of an external parse run: the
// report is flagged parsed and linked to the extracted findings.
func MarkReportParsed(w http.ResponseWriter, r *http.Request) {
	reportID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid report id format")
		return
	}

	var req struct {
		VulnerabilityIDs []string `json:"vulnerabilityIds"`
	}
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if req.VulnerabilityIDs == nil {
		req.VulnerabilityIDs = []string{}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var report models.Report
	err = reportCollection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": reportID},
		bson.M{"$set": bson.M{
			"parsed":           true,
			"vulnerabilityIds": req.VulnerabilityIDs,
			"updatedAt":        time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&report)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Report not found")
			return
		}
		logging.Logger.Errorf("mark parsed error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to update report")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, report)
}
