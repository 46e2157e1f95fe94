package storetest

import (
	"context"
	"io"
	"sync"

	"github.com/harentsoaR/medicore-api/internal/models"
	"github.com/harentsoaR/medicore-api/internal/storage"
)

// Avatars records uploads in memory.
type Avatars struct {
	mu      sync.Mutex
	objects map[string][]byte
	// UploadErr, when set, fails every upload.
	UploadErr error
}

func NewAvatars() *Avatars { return &Avatars{objects: make(map[string][]byte)} }

func (a *Avatars) Upload(_ context.Context, contentType string, r io.Reader, _ int64) (*models.Avatar, error) {
	if a.UploadErr != nil {
		return nil, a.UploadErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	name := storage.ObjectName(contentType)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.objects[name] = data
	return &models.Avatar{PublicID: name, URL: storage.ObjectURL("http://avatars.test", "doctor-avatars", name)}, nil
}

func (a *Avatars) Remove(_ context.Context, publicID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.objects, publicID)
	return nil
}

func (a *Avatars) Has(publicID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.objects[publicID]
	return ok
}

func (a *Avatars) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.objects)
}

var _ storage.AvatarStore = (*Avatars)(nil)
