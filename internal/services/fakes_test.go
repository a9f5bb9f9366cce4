package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"ecowaste/internal/models"
	"ecowaste/internal/utils"
	"ecowaste/pkg/cache"
	"ecowaste/pkg/sms"
	"ecowaste/pkg/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
	// incrementFailures makes the next n IncrementTotals calls fail.
	incrementFailures int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (r *fakeUserRepo) add(user *models.User) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.Role == "" {
		user.Role = models.UserRoleUser
	}
	r.users[user.ID] = user
	return user
}

func (r *fakeUserRepo) get(id primitive.ObjectID) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *r.users[id]
	return &copied
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	for _, existing := range r.users {
		if existing.Email == user.Email || existing.Phone == user.Phone {
			r.mu.Unlock()
			return utils.NewAppError(utils.ErrConflict, utils.ErrMsgUserExists)
		}
	}
	r.mu.Unlock()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.add(user)
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, utils.NewAppError(utils.ErrNotFound, "User not found")
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) find(match func(*models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if match(user) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, utils.NewAppError(utils.ErrNotFound, "User not found")
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Phone == phone })
}

func (r *fakeUserRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error) {
	result := make(map[primitive.ObjectID]*models.User)
	for _, id := range ids {
		if user, err := r.GetByID(ctx, id); err == nil {
			result[id] = user
		}
	}
	return result, nil
}

func (r *fakeUserRepo) IncrementTotals(ctx context.Context, id primitive.ObjectID, earnings, weight float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.incrementFailures > 0 {
		r.incrementFailures--
		return errors.New("write conflict")
	}
	user, ok := r.users[id]
	if !ok {
		return utils.NewAppError(utils.ErrNotFound, "User not found")
	}
	user.TotalEarnings += earnings
	user.TotalWasteCollected += weight
	return nil
}

func (r *fakeUserRepo) SetRole(ctx context.Context, id primitive.ObjectID, role models.UserRole) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return utils.NewAppError(utils.ErrNotFound, "User not found")
	}
	user.Role = role
	return nil
}

type fakeWasteRepo struct {
	mu       sync.Mutex
	requests map[primitive.ObjectID]*models.WasteRequest
}

func newFakeWasteRepo() *fakeWasteRepo {
	return &fakeWasteRepo{requests: make(map[primitive.ObjectID]*models.WasteRequest)}
}

func cloneRequest(r *models.WasteRequest) *models.WasteRequest {
	copied := *r
	if r.Feedback != nil {
		feedback := *r.Feedback
		copied.Feedback = &feedback
	}
	return &copied
}

func (r *fakeWasteRepo) put(request *models.WasteRequest) *models.WasteRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	if request.ID.IsZero() {
		request.ID = primitive.NewObjectID()
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now()
	}
	if request.Status == "" {
		request.Status = models.WasteStatusPending
	}
	r.requests[request.ID] = cloneRequest(request)
	return request
}

func (r *fakeWasteRepo) Create(ctx context.Context, request *models.WasteRequest) error {
	request.ID = primitive.NewObjectID()
	request.CreatedAt = time.Now()
	request.UpdatedAt = request.CreatedAt
	r.put(request)
	return nil
}

func (r *fakeWasteRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.WasteRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	request, ok := r.requests[id]
	if !ok {
		return nil, utils.NewAppError(utils.ErrNotFound, utils.ErrMsgRequestNotFound)
	}
	return cloneRequest(request), nil
}

func (r *fakeWasteRepo) sorted(match func(*models.WasteRequest) bool) []*models.WasteRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*models.WasteRequest, 0)
	for _, request := range r.requests {
		if match(request) {
			result = append(result, cloneRequest(request))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result
}

func (r *fakeWasteRepo) ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]*models.WasteRequest, error) {
	return r.sorted(func(w *models.WasteRequest) bool { return w.UserID != nil && *w.UserID == owner }), nil
}

func (r *fakeWasteRepo) List(ctx context.Context, status *models.WasteStatus, params *utils.PaginationParams) ([]*models.WasteRequest, int64, error) {
	all := r.sorted(func(w *models.WasteRequest) bool { return status == nil || w.Status == *status })
	total := int64(len(all))
	start := params.GetSkip()
	if start > len(all) {
		start = len(all)
	}
	end := start + params.GetLimit()
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *fakeWasteRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) (*models.WasteRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	request, ok := r.requests[id]
	if !ok {
		return nil, utils.NewAppError(utils.ErrNotFound, utils.ErrMsgRequestNotFound)
	}
	for key, value := range updates {
		switch key {
		case "status":
			request.Status = value.(models.WasteStatus)
		case "actual_weight":
			v := value.(float64)
			request.ActualWeight = &v
		case "price_per_kg":
			v := value.(float64)
			request.PricePerKg = &v
		case "total_amount":
			v := value.(float64)
			request.TotalAmount = &v
		case "collected_at":
			v := value.(time.Time)
			request.CollectedAt = &v
		}
	}
	request.UpdatedAt = time.Now()
	return cloneRequest(request), nil
}

func (r *fakeWasteRepo) MarkPaid(ctx context.Context, id primitive.ObjectID, paidAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	request, ok := r.requests[id]
	if !ok || request.IsPaid {
		return false, nil
	}
	request.IsPaid = true
	request.PaidAt = &paidAt
	return true, nil
}

func (r *fakeWasteRepo) ReleasePaid(ctx context.Context, id primitive.ObjectID, paidAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	request, ok := r.requests[id]
	if ok && request.IsPaid && request.PaidAt != nil && request.PaidAt.Equal(paidAt) {
		request.IsPaid = false
		request.PaidAt = nil
	}
	return nil
}

func (r *fakeWasteRepo) SetFeedback(ctx context.Context, id primitive.ObjectID, feedback *models.Feedback) (*models.WasteRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	request, ok := r.requests[id]
	if !ok || request.HasFeedback() {
		return nil, utils.NewAppError(utils.ErrInvalidState, utils.ErrMsgFeedbackExists)
	}
	copied := *feedback
	request.Feedback = &copied
	return cloneRequest(request), nil
}

func (r *fakeWasteRepo) ToggleFeatured(ctx context.Context, id primitive.ObjectID) (*models.WasteRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	request, ok := r.requests[id]
	if !ok || !request.HasFeedback() {
		return nil, utils.NewAppError(utils.ErrInvalidState, utils.ErrMsgNoFeedback)
	}
	request.Feedback.IsFeatured = !request.Feedback.IsFeatured
	return cloneRequest(request), nil
}

func (r *fakeWasteRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.requests[id]; !ok {
		return utils.NewAppError(utils.ErrNotFound, utils.ErrMsgRequestNotFound)
	}
	delete(r.requests, id)
	return nil
}

func (r *fakeWasteRepo) ListTestimonials(ctx context.Context, limit int) ([]*models.Testimonial, error) {
	featured := r.sorted(func(w *models.WasteRequest) bool { return w.HasFeedback() && w.Feedback.IsFeatured })
	sort.Slice(featured, func(i, j int) bool {
		return featured[i].Feedback.CreatedAt.After(featured[j].Feedback.CreatedAt)
	})
	if len(featured) > limit {
		featured = featured[:limit]
	}
	result := make([]*models.Testimonial, 0, len(featured))
	for _, w := range featured {
		result = append(result, &models.Testimonial{
			ID:        w.ID,
			Feedback:  *w.Feedback,
			WasteType: w.WasteType,
			Address:   w.Address,
			CreatedAt: w.CreatedAt,
		})
	}
	return result, nil
}

type fakeCache struct {
	mu      sync.Mutex
	items   map[string][]byte
	deletes int
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: make(map[string][]byte)}
}

func (c *fakeCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.items[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = data
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.items, key)
		c.deletes++
	}
	return nil
}

func (c *fakeCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	return ok
}

type fakeSMS struct {
	mu   sync.Mutex
	sent []*sms.SMSRequest
	err  error
}

func (f *fakeSMS) SendSMS(ctx context.Context, request *sms.SMSRequest) (*sms.SMSResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, request)
	if f.err != nil {
		return nil, f.err
	}
	return &sms.SMSResponse{MessageID: "SM1", Status: "sent"}, nil
}

func (f *fakeSMS) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (s *fakeStorage) Upload(ctx context.Context, request *storage.UploadRequest) (*storage.UploadResponse, error) {
	data, err := io.ReadAll(request.Reader)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[request.Key] = data
	return &storage.UploadResponse{Key: request.Key, URL: "https://cdn.example/" + request.Key, Size: int64(len(data))}, nil
}

func (s *fakeStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *fakeStorage) FileExists(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok, nil
}
