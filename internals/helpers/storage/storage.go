// Package storage adalah kolaborator penyimpanan file: bukti bayar dan lampiran keluhan.
// Service hanya menyimpan referensi (URL publik) yang dikembalikan FileStore.
package storage

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"kosan_backend/internals/constants"
	"kosan_backend/internals/helpers/apperror"
)

// Object adalah blob yang siap disimpan.
type Object struct {
	Filename    string
	ContentType string
	Data        []byte
}

type FileStore interface {
	// Put menyimpan obj di bawah dir dan mengembalikan referensi publiknya.
	Put(ctx context.Context, dir string, obj Object) (string, error)
	Delete(ctx context.Context, ref string) error
}

// ReadFormFile membaca file multipart dengan batas constants.MaxUploadSize.
func ReadFormFile(fh *multipart.FileHeader) (Object, error) {
	if fh == nil {
		return Object{}, apperror.InvalidInput("File tidak ditemukan")
	}
	if fh.Size > constants.MaxUploadSize {
		return Object{}, apperror.InvalidInput("Ukuran file maksimal 5MB")
	}
	src, err := fh.Open()
	if err != nil {
		return Object{}, apperror.InvalidInput("Gagal membuka file")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, constants.MaxUploadSize+1))
	if err != nil {
		return Object{}, apperror.InvalidInput("Gagal membaca file")
	}
	return Object{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// Validate memeriksa ukuran + ekstensi, lalu menentukan content type dari isi file.
func Validate(obj *Object, allowedExt []string) error {
	if len(obj.Data) == 0 {
		return apperror.InvalidInput("File kosong")
	}
	if int64(len(obj.Data)) > constants.MaxUploadSize {
		return apperror.InvalidInput("Ukuran file maksimal 5MB")
	}
	if !constants.IsAllowedExt(obj.Filename, allowedExt) {
		return apperror.InvalidInput(fmt.Sprintf("Tipe file tidak didukung (hanya %s)", strings.Join(allowedExt, ", ")))
	}
	obj.ContentType = detectContentType(obj.Data, obj.Filename)
	return nil
}

// Prepare: Validate, lalu gambar dinormalisasi ke WebP.
func Prepare(obj Object, allowedExt []string) (Object, error) {
	if err := Validate(&obj, allowedExt); err != nil {
		return Object{}, err
	}
	if constants.DetectFileKindFromExt(obj.Filename) != constants.FileKindImage {
		return obj, nil
	}
	webpData, err := NormalizeImage(obj.Data, DefaultImageOptions)
	if err != nil {
		return Object{}, apperror.InvalidInput("Gambar tidak dapat dibaca")
	}
	base := strings.TrimSuffix(obj.Filename, filepath.Ext(obj.Filename))
	return Object{Filename: base + ".webp", ContentType: "image/webp", Data: webpData}, nil
}

// Save: Prepare + Put dalam satu langkah.
func Save(ctx context.Context, fs FileStore, dir string, obj Object, allowedExt []string) (string, error) {
	prepared, err := Prepare(obj, allowedExt)
	if err != nil {
		return "", err
	}
	ref, err := fs.Put(ctx, dir, prepared)
	if err != nil {
		return "", apperror.Internal("Gagal menyimpan file", err)
	}
	return ref, nil
}

func detectContentType(data []byte, filename string) string {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	ct := http.DetectContentType(head)
	if ct == "application/octet-stream" {
		if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); byExt != "" {
			ct = byExt
		}
	}
	return ct
}

func buildObjectKey(prefix, dir, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := slugify(strings.TrimSuffix(filename, filepath.Ext(filename)))
	b := make([]byte, 3)
	_, _ = rand.Read(b)
	name := fmt.Sprintf("%s_%s_%s%s", base, time.Now().UTC().Format("20060102_150405"), hex.EncodeToString(b), ext)

	parts := make([]string, 0, 3)
	for _, p := range []string{prefix, dir} {
		if p = strings.Trim(p, "/"); p != "" {
			parts = append(parts, p)
		}
	}
	parts = append(parts, name)
	return strings.Join(parts, "/")
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "-", "_", "-").Replace(s)
	s = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return -1
	}, s)
	if s == "" {
		return "file"
	}
	return s
}

// MemoryStore menyimpan object di memori; dipakai test dan mode dev tanpa disk.
type MemoryStore struct {
	Objects map[string]Object
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{Objects: map[string]Object{}} }

func (m *MemoryStore) Put(_ context.Context, dir string, obj Object) (string, error) {
	key := "mem://" + buildObjectKey("", dir, obj.Filename)
	m.Objects[key] = Object{Filename: obj.Filename, ContentType: obj.ContentType, Data: bytes.Clone(obj.Data)}
	return key, nil
}

func (m *MemoryStore) Delete(_ context.Context, ref string) error {
	delete(m.Objects, ref)
	return nil
}
