package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kosan_backend/internals/constants"
	"kosan_backend/internals/features/complaints/comments/dto"
	complaintModel "kosan_backend/internals/features/complaints/complaints/model"
	"kosan_backend/internals/helpers/apperror"
	helperAuth "kosan_backend/internals/helpers/auth"
	"kosan_backend/internals/testutil"
)

func TestCommentPermissions(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	svc := NewCommentService(db, zap.NewNop())

	admin := helperAuth.AdminActor(testutil.SeedUser(t, db, "admin", constants.RoleAdmin).ID)
	budiProfile := testutil.SeedTenant(t, db, "budi")
	budi := helperAuth.TenantActor(budiProfile.TenantProfileUserID)
	sari := helperAuth.TenantActor(testutil.SeedTenant(t, db, "sari").TenantProfileUserID)

	c := &complaintModel.ComplaintModel{
		ComplaintTenantID:    budiProfile.TenantProfileID,
		ComplaintTitle:       "Lampu mati",
		ComplaintDescription: "Lampu kamar mati sejak semalam",
		ComplaintCategory:    complaintModel.CategoryMaintenance,
		ComplaintPriority:    complaintModel.PriorityMedium,
		ComplaintStatus:      complaintModel.StatusOpen,
	}
	require.NoError(t, db.Create(c).Error)

	mine, err := svc.AddComment(ctx, budi, c.ComplaintID, dto.CreateCommentRequest{Comment: "  Mohon dicek  "})
	require.NoError(t, err)
	assert.Equal(t, "Mohon dicek", mine.Comment)
	assert.False(t, mine.IsAdmin)
	assert.Equal(t, "budi", mine.UserName)

	reply, err := svc.AddComment(ctx, admin, c.ComplaintID, dto.CreateCommentRequest{Comment: "Teknisi datang besok"})
	require.NoError(t, err)
	assert.True(t, reply.IsAdmin)

	_, err = svc.AddComment(ctx, budi, c.ComplaintID, dto.CreateCommentRequest{Comment: "   "})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	_, err = svc.AddComment(ctx, sari, c.ComplaintID, dto.CreateCommentRequest{Comment: "ikut"})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	rows, err := svc.ListComments(ctx, budi, c.ComplaintID)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	_, err = svc.ListComments(ctx, sari, c.ComplaintID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	// hanya penulis yang boleh mengubah, admin sekalipun tidak
	_, err = svc.UpdateComment(ctx, admin, mine.CommentID, dto.UpdateCommentRequest{Comment: "ubah"})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	upd, err := svc.UpdateComment(ctx, budi, mine.CommentID, dto.UpdateCommentRequest{Comment: "Mohon segera dicek"})
	require.NoError(t, err)
	assert.Equal(t, "Mohon segera dicek", upd.Comment)

	assert.ErrorIs(t, svc.DeleteComment(ctx, budi, reply.CommentID), apperror.ErrForbidden)
	require.NoError(t, svc.DeleteComment(ctx, admin, mine.CommentID))
	require.NoError(t, svc.DeleteComment(ctx, admin, reply.CommentID))

	rows, err = svc.ListComments(ctx, admin, c.ComplaintID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
