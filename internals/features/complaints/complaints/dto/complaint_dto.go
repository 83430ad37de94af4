package dto

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	commentDto "kosan_backend/internals/features/complaints/comments/dto"
	"kosan_backend/internals/features/complaints/complaints/model"
)

/* =======================================================
   REQUEST
   ======================================================= */

// Penyewa diambil dari actor, bukan dari payload.
type CreateComplaintRequest struct {
	Title       string                  `json:"complaint_title" validate:"required,max=200"`
	Description string                  `json:"complaint_description" validate:"required,max=5000"`
	Category    model.ComplaintCategory `json:"complaint_category" validate:"omitempty,oneof=maintenance facilities cleanliness noise security other"`
	Priority    model.ComplaintPriority `json:"complaint_priority" validate:"omitempty,oneof=low medium high urgent"`
	RoomID      *uuid.UUID              `json:"complaint_room_id"`
}

func (r *CreateComplaintRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Category = model.ComplaintCategory(strings.ToLower(strings.TrimSpace(string(r.Category))))
	r.Priority = model.ComplaintPriority(strings.ToLower(strings.TrimSpace(string(r.Priority))))
	if r.Category == "" {
		r.Category = model.CategoryOther
	}
	if r.Priority == "" {
		r.Priority = model.PriorityMedium
	}
}

// Judul, deskripsi, dan penyewa tidak bisa diubah setelah dibuat.
type UpdateComplaintRequest struct {
	Status          *model.ComplaintStatus   `json:"complaint_status" validate:"omitempty,oneof=open in_progress resolved closed"`
	Priority        *model.ComplaintPriority `json:"complaint_priority" validate:"omitempty,oneof=low medium high urgent"`
	Category        *model.ComplaintCategory `json:"complaint_category" validate:"omitempty,oneof=maintenance facilities cleanliness noise security other"`
	ResolutionNotes *string                  `json:"complaint_resolution_notes" validate:"omitempty,max=5000"`
}

type ResolveComplaintRequest struct {
	ResolutionNotes *string `json:"complaint_resolution_notes" validate:"omitempty,max=5000"`
}

type ListComplaintsQuery struct {
	Status   string     `query:"status" validate:"omitempty,oneof=open in_progress resolved closed"`
	Category string     `query:"category" validate:"omitempty,oneof=maintenance facilities cleanliness noise security other"`
	Priority string     `query:"priority" validate:"omitempty,oneof=low medium high urgent"`
	TenantID *uuid.UUID `query:"tenant_id"`
	RoomID   *uuid.UUID `query:"room_id"`
	Q        string     `query:"q"`
}

/* =======================================================
   LABEL
   ======================================================= */

var categoryLabels = map[model.ComplaintCategory]string{
	model.CategoryMaintenance: "Pemeliharaan/Perbaikan",
	model.CategoryFacilities:  "Fasilitas",
	model.CategoryCleanliness: "Kebersihan",
	model.CategoryNoise:       "Kebisingan",
	model.CategorySecurity:    "Keamanan",
	model.CategoryOther:       "Lainnya",
}

var priorityLabels = map[model.ComplaintPriority]string{
	model.PriorityLow:    "Rendah",
	model.PriorityMedium: "Sedang",
	model.PriorityHigh:   "Tinggi",
	model.PriorityUrgent: "Mendesak",
}

var statusLabels = map[model.ComplaintStatus]string{
	model.StatusOpen:       "Baru",
	model.StatusInProgress: "Dalam Proses",
	model.StatusResolved:   "Selesai",
	model.StatusClosed:     "Ditutup",
}

func CategoryLabel(c model.ComplaintCategory) string { return categoryLabels[c] }
func PriorityLabel(p model.ComplaintPriority) string { return priorityLabels[p] }
func StatusLabel(s model.ComplaintStatus) string     { return statusLabels[s] }

/* =======================================================
   RESPONSE
   ======================================================= */

type ComplaintResponse struct {
	ComplaintID       uuid.UUID  `json:"complaint_id"`
	ComplaintTenantID uuid.UUID  `json:"complaint_tenant_id"`
	TenantName        string     `json:"tenant_name"`
	TenantEmail       string     `json:"tenant_email"`
	TenantPhone       *string    `json:"tenant_phone,omitempty"`
	ComplaintRoomID   *uuid.UUID `json:"complaint_room_id,omitempty"`
	RoomNumber        *string    `json:"room_number,omitempty"`

	Title           string                  `json:"complaint_title"`
	Description     string                  `json:"complaint_description"`
	Category        model.ComplaintCategory `json:"complaint_category"`
	CategoryDisplay string                  `json:"category_display"`
	Priority        model.ComplaintPriority `json:"complaint_priority"`
	PriorityDisplay string                  `json:"priority_display"`
	Status          model.ComplaintStatus   `json:"complaint_status"`
	StatusDisplay   string                  `json:"status_display"`

	AttachmentURL   *string    `json:"complaint_attachment_url,omitempty"`
	ResolutionNotes *string    `json:"complaint_resolution_notes,omitempty"`
	ResolvedAt      *time.Time `json:"complaint_resolved_at,omitempty"`
	ResolvedBy      *uuid.UUID `json:"complaint_resolved_by,omitempty"`
	ResolvedByName  *string    `json:"resolved_by_name,omitempty"`

	CommentCount int64 `json:"comment_count"`
	DaysOpen     int   `json:"days_open"`
	IsResolved   bool  `json:"is_resolved"`

	CreatedAt time.Time `json:"complaint_created_at"`
	UpdatedAt time.Time `json:"complaint_updated_at"`

	Comments []commentDto.CommentResponse `json:"comments,omitempty"`
}

// DaysOpen: hari sejak dibuat sampai resolved_at (atau now).
func DaysOpen(m *model.ComplaintModel, now time.Time) int {
	end := now
	if m.ComplaintResolvedAt != nil {
		end = *m.ComplaintResolvedAt
	}
	d := end.Sub(m.ComplaintCreatedAt)
	if d < 0 {
		return 0
	}
	return int(d.Hours() / 24)
}

func FromModel(m *model.ComplaintModel, commentCount int64, now time.Time) ComplaintResponse {
	out := ComplaintResponse{
		ComplaintID:       m.ComplaintID,
		ComplaintTenantID: m.ComplaintTenantID,
		ComplaintRoomID:   m.ComplaintRoomID,
		Title:             m.ComplaintTitle,
		Description:       m.ComplaintDescription,
		Category:          m.ComplaintCategory,
		CategoryDisplay:   CategoryLabel(m.ComplaintCategory),
		Priority:          m.ComplaintPriority,
		PriorityDisplay:   PriorityLabel(m.ComplaintPriority),
		Status:            m.ComplaintStatus,
		StatusDisplay:     StatusLabel(m.ComplaintStatus),
		AttachmentURL:     m.ComplaintAttachmentURL,
		ResolutionNotes:   m.ComplaintResolutionNotes,
		ResolvedAt:        m.ComplaintResolvedAt,
		ResolvedBy:        m.ComplaintResolvedBy,
		CommentCount:      commentCount,
		DaysOpen:          DaysOpen(m, now),
		IsResolved:        m.ComplaintStatus.IsFinal(),
		CreatedAt:         m.ComplaintCreatedAt,
		UpdatedAt:         m.ComplaintUpdatedAt,
	}
	if m.Tenant != nil && m.Tenant.User != nil {
		out.TenantName = m.Tenant.User.FullName
		if out.TenantName == "" {
			out.TenantName = m.Tenant.User.Email
		}
		out.TenantEmail = m.Tenant.User.Email
		out.TenantPhone = m.Tenant.User.Phone
	}
	if m.Room != nil {
		n := m.Room.RoomNumber
		out.RoomNumber = &n
	}
	if m.Resolver != nil {
		n := m.Resolver.FullName
		out.ResolvedByName = &n
	}
	return out
}

func FromModelList(rows []model.ComplaintModel, counts map[uuid.UUID]int64, now time.Time) []ComplaintResponse {
	out := make([]ComplaintResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i], counts[rows[i].ComplaintID], now))
	}
	return out
}

/* =======================================================
   STATISTIK
   ======================================================= */

type ComplaintStatistics struct {
	TotalComplaints      int64            `json:"total_complaints"`
	OpenComplaints       int64            `json:"open_complaints"`
	InProgressComplaints int64            `json:"in_progress_complaints"`
	ResolvedComplaints   int64            `json:"resolved_complaints"`
	ClosedComplaints     int64            `json:"closed_complaints"`
	ByCategory           map[string]int64 `json:"by_category"`
	ByPriority           map[string]int64 `json:"by_priority"`
	// nil kalau belum ada keluhan yang selesai
	AvgResolutionDays *float64 `json:"avg_resolution_time"`
}

// Round1: pembulatan satu desimal.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
