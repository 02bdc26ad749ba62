package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rangerisrael/pet-portal-sub000/internal/domain"
	"github.com/rangerisrael/pet-portal-sub000/internal/repository"
	"github.com/rangerisrael/pet-portal-sub000/internal/server/authctx"
	"github.com/rangerisrael/pet-portal-sub000/internal/service"
	"github.com/xuri/excelize/v2"
)

// ExportHandler produces CSV/XLSX downloads of the inventory and the audit
// trail. Inventory exports respect the caller's branch scope.
type ExportHandler struct {
	Inventory repository.InventoryRepository
	AuditLogs repository.AuditLogRepository
	Staff     repository.StaffAssignmentRepository
	Branches  repository.BranchRepository
	Audit     *service.AuditService
}

func (h ExportHandler) RegisterStaffRoutes(r chi.Router) {
	r.Get("/inventory/export", h.exportInventory)
}

func (h ExportHandler) RegisterOwnerRoutes(r chi.Router) {
	r.Get("/audit-logs/export", h.exportAuditLogs)
}

func (h ExportHandler) exportInventory(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	scope, err := resolveScope(r.Context(), *user, h.Staff, h.Branches)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	items, err := h.Inventory.List(r.Context(), 5000)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	items = service.FilterItemsByBranch(items, scope)

	header := []string{"id", "branch_id", "name", "code", "type", "current_stock", "min_threshold", "reorder_level", "unit_cost"}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			strconv.FormatInt(item.ID, 10),
			strconv.FormatInt(item.BranchID, 10),
			item.Name,
			item.Code,
			string(item.Type),
			strconv.Itoa(item.CurrentStock),
			strconv.Itoa(item.MinThreshold),
			strconv.Itoa(item.ReorderLevel),
			strconv.FormatInt(item.UnitCost.Amount, 10),
		})
	}

	h.recordExport(*user, "inventory")
	writeExport(w, r, "inventory", "Inventory", header, rows)
}

func (h ExportHandler) exportAuditLogs(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	filter, err := auditFilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if filter.Limit == 0 {
		filter.Limit = 5000
	}
	items, err := h.AuditLogs.List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	header := []string{"id", "actor", "action", "entity_type", "entity_id", "entity_name", "summary", "severity", "logged_at"}
	rows := make([][]string, 0, len(items))
	for _, l := range items {
		rows = append(rows, []string{
			strconv.FormatInt(l.ID, 10),
			l.ActorName,
			string(l.Action),
			l.EntityType,
			l.EntityID,
			l.EntityName,
			l.Summary,
			string(l.Severity),
			l.LoggedAt.Format(time.RFC3339),
		})
	}

	h.recordExport(*user, "audit_logs")
	writeExport(w, r, "audit_logs", "Audit Logs", header, rows)
}

func (h ExportHandler) recordExport(user authctx.CurrentUser, entity string) {
	if h.Audit == nil {
		return
	}
	h.Audit.Record(service.AuditEntry{
		ActorID:    &user.ID,
		ActorName:  user.Name,
		Action:     domain.ActionExport,
		EntityType: entity,
		Summary:    entity + " exported",
		Severity:   domain.SeverityInfo,
	})
}

func writeExport(w http.ResponseWriter, r *http.Request, name, sheet string, header []string, rows [][]string) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	suffix := time.Now().Format("20060102_150405")

	switch format {
	case "csv":
		data, err := exportCSV(header, rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+"_"+suffix+".csv"))
		_, _ = w.Write(data)
	case "xlsx", "excel":
		data, err := exportXLSX(sheet, header, rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+"_"+suffix+".xlsx"))
		_, _ = w.Write(data)
	default:
		writeError(w, http.StatusBadRequest, "invalid format (use csv or xlsx)")
	}
}

func exportCSV(header []string, rows [][]string) ([]byte, error) {
	buf := new(bytes.Buffer)
	cw := csv.NewWriter(buf)
	_ = cw.Write(header)
	for _, row := range rows {
		_ = cw.Write(row)
	}
	cw.Flush()
	return buf.Bytes(), cw.Error()
}

func exportXLSX(sheet string, header []string, rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	for c, v := range header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		_ = f.SetCellValue(sheet, cell, v)
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#1F2937"}, Pattern: 1},
	})
	lastCol, _ := excelize.CoordinatesToCellName(len(header), 1)
	_ = f.SetCellStyle(sheet, "A1", lastCol, style)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
