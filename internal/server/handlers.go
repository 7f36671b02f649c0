package server

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/veridata/mdm/internal/core/model"
	"github.com/veridata/mdm/internal/core/resolve"
	"github.com/veridata/mdm/internal/store"
	"github.com/veridata/mdm/internal/validate"
)

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Metrics feeds the dashboard: active record counts plus duplicate group
// counts per collection.
func (s *Server) Metrics(c *gin.Context) {
	ctx := c.Request.Context()

	records := make(map[string]int, len(model.CollectionNames))
	for _, name := range model.CollectionNames {
		n, err := s.Store.CountActive(ctx, name)
		if err != nil {
			log.Printf("Failed to count %s: %v", name, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute metrics"})
			return
		}
		records[name] = n
	}

	duplicates, err := s.MDM.CountDuplicates(ctx)
	if err != nil {
		log.Printf("Failed to count duplicates: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute metrics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"records": records, "duplicates": duplicates})
}

// ListDuplicates returns duplicate groups, for one collection when
// ?collection= is given, otherwise for all of them.
func (s *Server) ListDuplicates(c *gin.Context) {
	ctx := c.Request.Context()

	if collection := c.Query("collection"); collection != "" {
		groups, err := s.MDM.FindDuplicates(ctx, collection)
		if err != nil {
			s.detectionError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{collection: groups})
		return
	}

	all, err := s.MDM.FindAllDuplicates(ctx)
	if err != nil {
		s.detectionError(c, err)
		return
	}
	c.JSON(http.StatusOK, all)
}

func (s *Server) DuplicateCounts(c *gin.Context) {
	counts, err := s.MDM.CountDuplicates(c.Request.Context())
	if err != nil {
		s.detectionError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

type mergeRequest struct {
	Collection     string  `json:"collection" binding:"required"`
	MasterID       int64   `json:"master_id" binding:"required"`
	SubordinateIDs []int64 `json:"subordinate_ids" binding:"required"`
	Initiator      string  `json:"initiator"`
}

func (s *Server) Merge(c *gin.Context) {
	var req mergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	err := s.MDM.Merge(c.Request.Context(), model.MergeDecision{
		Collection:     req.Collection,
		MasterID:       req.MasterID,
		SubordinateIDs: req.SubordinateIDs,
		Initiator:      req.Initiator,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": "merged", "master_id": req.MasterID, "merged": len(req.SubordinateIDs)})
	case isInvalidMerge(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrUnknownCollection):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.Printf("Failed to merge: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to merge records"})
	}
}

func isInvalidMerge(err error) bool {
	var invalid *resolve.InvalidMergeError
	return errors.As(err, &invalid)
}

type recordRequest struct {
	Fields map[string]string `json:"fields" binding:"required"`
	Actor  string            `json:"actor"`
}

func (s *Server) ListRecords(c *gin.Context) {
	collection := c.Param("collection")
	records, err := s.Store.ListActive(c.Request.Context(), collection)
	if err != nil {
		s.storeError(c, collection, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records, "count": len(records)})
}

func (s *Server) GetRecord(c *gin.Context) {
	collection := c.Param("collection")
	id, ok := parseID(c)
	if !ok {
		return
	}
	rec, err := s.Store.GetRecord(c.Request.Context(), collection, id)
	if err != nil {
		s.storeError(c, collection, err)
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) CreateRecord(c *gin.Context) {
	collection := c.Param("collection")
	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if err := validateFields(collection, req.Fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := s.Store.CreateRecord(c.Request.Context(), collection, req.Fields, req.Actor)
	if err != nil {
		s.storeError(c, collection, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (s *Server) UpdateRecord(c *gin.Context) {
	collection := c.Param("collection")
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if err := validateFields(collection, req.Fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.Store.UpdateRecord(c.Request.Context(), collection, id, req.Fields, req.Actor); err != nil {
		s.storeError(c, collection, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (s *Server) DeleteRecord(c *gin.Context) {
	collection := c.Param("collection")
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := s.Store.DeleteRecord(c.Request.Context(), collection, id, c.Query("actor")); err != nil {
		s.storeError(c, collection, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) AuditHistory(c *gin.Context) {
	filter := store.AuditFilter{
		Collection: c.Query("collection"),
		Operation:  model.OperationKind(c.Query("operation")),
		Limit:      100,
	}
	if raw := c.Query("record_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid record_id"})
			return
		}
		filter.RecordID = id
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		filter.Limit = n
	}

	entries, err := s.Store.AuditHistory(c.Request.Context(), filter)
	if err != nil {
		log.Printf("Failed to query audit log: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query audit log"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid record id"})
		return 0, false
	}
	return id, true
}

func (s *Server) detectionError(c *gin.Context, err error) {
	if errors.Is(err, model.ErrUnknownCollection) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	log.Printf("Detection failed: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to detect duplicates"})
}

func (s *Server) storeError(c *gin.Context, collection string, err error) {
	switch {
	case errors.Is(err, model.ErrUnknownCollection):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, sql.ErrNoRows):
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
	default:
		log.Printf("Store operation on %s failed: %v", collection, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Storage failure"})
	}
}

// validateFields applies the per-collection write validations. Detection
// deliberately skips these; they only gate writes.
func validateFields(collection string, fields map[string]string) error {
	if err := validate.Name(fields["name"]); err != nil {
		return err
	}
	switch collection {
	case model.Customers, model.Suppliers:
		if err := validate.TaxID(fields["tax_id"]); err != nil {
			return err
		}
		return validate.Email(fields["email"])
	case model.Products:
		if err := validate.ProductCode(fields["code"]); err != nil {
			return err
		}
		if fields["category"] == "" {
			return fmt.Errorf("category is required")
		}
		return nil
	default:
		// Unknown collections fail later with ErrUnknownCollection.
		return nil
	}
}
