package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kosan_backend/internals/constants"
	"kosan_backend/internals/helpers/apperror"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestValidateRejectsWrongExtAndSize(t *testing.T) {
	obj := Object{Filename: "nota.exe", Data: []byte("x")}
	err := Validate(&obj, constants.ProofAllowedExt)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	big := Object{Filename: "a.pdf", Data: make([]byte, constants.MaxUploadSize+1)}
	assert.ErrorIs(t, Validate(&big, constants.ProofAllowedExt), apperror.ErrInvalidInput)

	pdf := Object{Filename: "bukti.pdf", Data: []byte("%PDF-1.4\n")}
	require.NoError(t, Validate(&pdf, constants.ProofAllowedExt))
	assert.Equal(t, "application/pdf", pdf.ContentType)

	assert.ErrorIs(t, Validate(&pdf, constants.AttachmentAllowedExt), apperror.ErrInvalidInput)
}

func TestPrepareConvertsImageToWebP(t *testing.T) {
	out, err := Prepare(Object{Filename: "Foto Kamar.png", Data: pngBytes(t, 40, 20)}, constants.AttachmentAllowedExt)
	require.NoError(t, err)
	assert.Equal(t, "Foto Kamar.webp", out.Filename)
	assert.Equal(t, "image/webp", out.ContentType)
	assert.NotEmpty(t, out.Data)
}

func TestDownscaleKeepsAspect(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 400, 200))
	dst := downscaleIfNeeded(src, 100, 100)
	assert.Equal(t, 100, dst.Bounds().Dx())
	assert.Equal(t, 50, dst.Bounds().Dy())
	assert.Same(t, src, downscaleIfNeeded(src, 1000, 1000))
}

func TestLocalStorePutDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir, "/uploads")
	require.NoError(t, err)

	ref, err := Save(context.Background(), s, "payments/proofs", Object{Filename: "bukti.pdf", Data: []byte("%PDF-1.4\n")}, constants.ProofAllowedExt)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "/uploads/payments/proofs/bukti_"))

	key := strings.TrimPrefix(ref, "/uploads/")
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(key)))
	require.NoError(t, err)

	require.NoError(t, s.Delete(context.Background(), ref))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(key)))
	assert.True(t, os.IsNotExist(err))
}

func TestOSSKeyFromURL(t *testing.T) {
	s := &OSSStore{Endpoint: "oss-ap-southeast-5.aliyuncs.com", BucketName: "kosan"}
	url := s.PublicURL("kosan/payments/a.webp")
	assert.Equal(t, "https://kosan.oss-ap-southeast-5.aliyuncs.com/kosan/payments/a.webp", url)

	key, err := s.keyFromURL(url)
	require.NoError(t, err)
	assert.Equal(t, "kosan/payments/a.webp", key)
}
