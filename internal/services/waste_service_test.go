package services

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"ecowaste/internal/models"
	"ecowaste/internal/utils"
	"ecowaste/internal/validators"
	"ecowaste/pkg/logger"
	"ecowaste/pkg/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type wasteFixture struct {
	service  WasteService
	wastes   *fakeWasteRepo
	users    *fakeUserRepo
	sms      *fakeSMS
	cache    *fakeCache
	storage  *fakeStorage
	owner    *models.User
	admin    *models.User
	stranger *models.User
}

func newWasteFixture(t *testing.T) *wasteFixture {
	t.Helper()
	log := logger.NewNop()

	f := &wasteFixture{
		wastes:  newFakeWasteRepo(),
		users:   newFakeUserRepo(),
		sms:     &fakeSMS{},
		cache:   newFakeCache(),
		storage: newFakeStorage(),
	}
	f.owner = f.users.add(&models.User{Name: "Owner", Email: "owner@example.com", Phone: "9000000001"})
	f.admin = f.users.add(&models.User{Name: "Admin", Email: "admin@example.com", Phone: "9000000002", Role: models.UserRoleAdmin})
	f.stranger = f.users.add(&models.User{Name: "Other", Email: "other@example.com", Phone: "9000000003"})

	f.service = NewWasteService(
		f.wastes,
		f.users,
		NewUploadService(f.storage, UploadConfig{MaxSize: 1 << 20, MaxWidth: 64, MaxHeight: 64}, log),
		NewNotificationService(f.sms, "EcoWaste", log),
		NewCacheService(f.cache, log, "", time.Minute),
		metrics.New(),
		log,
	)
	return f
}

func identity(user *models.User) *models.Identity {
	return &models.Identity{UserID: user.ID, Role: user.Role}
}

func submission() *validators.CreateWasteRequest {
	return &validators.CreateWasteRequest{
		Name:            "Asha",
		Phone:           "9876543210",
		Email:           "asha@example.com",
		Address:         "12 Market Road",
		WasteType:       string(models.WasteTypeVegetable),
		EstimatedWeight: 8,
	}
}

func floatPtr(v float64) *float64 { return &v }

func pngHeader(t *testing.T, width, height int) *multipart.FileHeader {
	t.Helper()

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, width, height))))

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", "scraps.png")
	require.NoError(t, err)
	_, err = part.Write(img.Bytes())
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["image"][0]
}

func TestWasteServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("anonymous submission gets defaults", func(t *testing.T) {
		f := newWasteFixture(t)

		created, err := f.service.Create(ctx, submission(), nil, nil)
		require.NoError(t, err)

		assert.Nil(t, created.UserID)
		assert.Equal(t, models.WasteStatusPending, created.Status)
		assert.Equal(t, models.FrequencyOneTime, created.Frequency)
		assert.Equal(t, models.PaymentMethodCash, created.Payout.Method)
		assert.Nil(t, created.Payout.Bank)
		assert.False(t, created.IsPaid)
		assert.Equal(t, 1, f.sms.count())
	})

	t.Run("rejects non-positive weight", func(t *testing.T) {
		f := newWasteFixture(t)
		req := submission()
		req.EstimatedWeight = 0

		_, err := f.service.Create(ctx, req, nil, nil)
		assert.ErrorIs(t, err, utils.ErrValidation)
		assert.Empty(t, f.wastes.requests)
	})

	t.Run("bank details from a json string round trip", func(t *testing.T) {
		f := newWasteFixture(t)
		bank := models.BankDetails{
			AccountNumber:     "001122334455",
			IFSCCode:          "SBIN0000123",
			AccountHolderName: "Asha Rao",
			BankName:          "State Bank",
		}
		encoded, err := json.Marshal(bank)
		require.NoError(t, err)
		quoted, err := json.Marshal(string(encoded))
		require.NoError(t, err)

		req := submission()
		req.PaymentMethod = "bank"
		req.BankDetails = quoted

		created, err := f.service.Create(ctx, req, &f.owner.ID, nil)
		require.NoError(t, err)

		stored, err := f.wastes.GetByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.Payout.Bank)
		assert.Equal(t, bank, *stored.Payout.Bank)
		assert.Nil(t, stored.Payout.UPI)
	})

	t.Run("bank details as an object", func(t *testing.T) {
		f := newWasteFixture(t)
		req := submission()
		req.PaymentMethod = "bank"
		req.BankDetails = json.RawMessage(`{"accountNumber":"42","ifscCode":"HDFC0001","accountHolderName":"A","bankName":"HDFC"}`)

		created, err := f.service.Create(ctx, req, nil, nil)
		require.NoError(t, err)
		require.NotNil(t, created.Payout.Bank)
		assert.Equal(t, "HDFC0001", created.Payout.Bank.IFSCCode)
	})

	t.Run("malformed bank details are treated as absent", func(t *testing.T) {
		f := newWasteFixture(t)
		req := submission()
		req.PaymentMethod = "bank"
		req.BankDetails = json.RawMessage(`{not json`)

		created, err := f.service.Create(ctx, req, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentMethodBank, created.Payout.Method)
		assert.Nil(t, created.Payout.Bank)
	})

	t.Run("upi keeps only the upi payload", func(t *testing.T) {
		f := newWasteFixture(t)
		req := submission()
		req.PaymentMethod = "upi"
		req.UPIID = "asha@upi"
		req.BankDetails = json.RawMessage(`{"accountNumber":"42"}`)

		created, err := f.service.Create(ctx, req, nil, nil)
		require.NoError(t, err)
		require.NotNil(t, created.Payout.UPI)
		assert.Equal(t, "asha@upi", created.Payout.UPI.UPIID)
		assert.Nil(t, created.Payout.Bank)
	})

	t.Run("parses preferred pickup", func(t *testing.T) {
		f := newWasteFixture(t)
		req := submission()
		req.PreferredPickup = "2026-11-02T09:30"

		created, err := f.service.Create(ctx, req, nil, nil)
		require.NoError(t, err)
		require.NotNil(t, created.PreferredPickup)
		assert.Equal(t, 9, created.PreferredPickup.Hour())
	})

	t.Run("stores a downscaled image", func(t *testing.T) {
		f := newWasteFixture(t)

		created, err := f.service.Create(ctx, submission(), &f.owner.ID, pngHeader(t, 200, 100))
		require.NoError(t, err)
		require.NotEmpty(t, created.ImageKey)
		assert.Contains(t, created.Image, created.ImageKey)

		data := f.storage.objects[created.ImageKey]
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, 64, cfg.Width)
		assert.Equal(t, 32, cfg.Height)
	})

	t.Run("sms failure does not fail the submission", func(t *testing.T) {
		f := newWasteFixture(t)
		f.sms.err = assert.AnError

		_, err := f.service.Create(ctx, submission(), nil, nil)
		assert.NoError(t, err)
	})
}

func TestWasteServiceGetOne(t *testing.T) {
	ctx := context.Background()
	f := newWasteFixture(t)

	owned := f.wastes.put(&models.WasteRequest{UserID: &f.owner.ID, Name: "Owned"})
	anonymous := f.wastes.put(&models.WasteRequest{Name: "Anon"})

	got, err := f.service.GetOne(ctx, owned.ID, identity(f.owner))
	require.NoError(t, err)
	require.NotNil(t, got.Owner)
	assert.Equal(t, "Owner", got.Owner.Name)
	assert.Equal(t, f.owner.Email, got.Owner.Email)

	_, err = f.service.GetOne(ctx, owned.ID, identity(f.admin))
	assert.NoError(t, err)

	_, err = f.service.GetOne(ctx, owned.ID, identity(f.stranger))
	assert.ErrorIs(t, err, utils.ErrForbidden)

	got, err = f.service.GetOne(ctx, anonymous.ID, identity(f.stranger))
	require.NoError(t, err)
	assert.Nil(t, got.Owner)

	_, err = f.service.GetOne(ctx, primitive.NewObjectID(), identity(f.admin))
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestWasteServiceListMine(t *testing.T) {
	ctx := context.Background()
	f := newWasteFixture(t)

	older := f.wastes.put(&models.WasteRequest{UserID: &f.owner.ID, CreatedAt: time.Now().Add(-time.Hour)})
	newer := f.wastes.put(&models.WasteRequest{UserID: &f.owner.ID, CreatedAt: time.Now()})
	f.wastes.put(&models.WasteRequest{UserID: &f.stranger.ID})
	f.wastes.put(&models.WasteRequest{})

	mine, err := f.service.ListMine(ctx, f.owner.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, newer.ID, mine[0].ID)
	assert.Equal(t, older.ID, mine[1].ID)
}

func TestWasteServiceUpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("weight times price sets total", func(t *testing.T) {
		f := newWasteFixture(t)
		request := f.wastes.put(&models.WasteRequest{UserID: &f.owner.ID})

		updated, err := f.service.UpdateStatus(ctx, request.ID, &validators.UpdateStatusRequest{
			Status:       "verified",
			ActualWeight: floatPtr(10),
			PricePerKg:   floatPtr(6),
		})
		require.NoError(t, err)
		require.NotNil(t, updated.TotalAmount)
		assert.Equal(t, 60.0, *updated.TotalAmount)
		assert.Equal(t, models.WasteStatusVerified, updated.Status)
	})

	t.Run("price alone uses the stored weight", func(t *testing.T) {
		f := newWasteFixture(t)
		request := f.wastes.put(&models.WasteRequest{UserID: &f.owner.ID, ActualWeight: floatPtr(2.5)})

		updated, err := f.service.UpdateStatus(ctx, request.ID, &validators.UpdateStatusRequest{
			Status:     "verified",
			PricePerKg: floatPtr(4.2),
		})
		require.NoError(t, err)
		require.NotNil(t, updated.TotalAmount)
		assert.Equal(t, 10.5, *updated.TotalAmount)
	})

	t.Run("weight alone does not recompute total", func(t *testing.T) {
		f := newWasteFixture(t)
		request := f.wastes.put(&models.WasteRequest{UserID: &f.owner.ID, PricePerKg: floatPtr(5), TotalAmount: floatPtr(20)})

		updated, err := f.service.UpdateStatus(ctx, request.ID, &validators.UpdateStatusRequest{
			Status:       "verified",
			ActualWeight: floatPtr(9),
		})
		require.NoError(t, err)
		assert.Equal(t, 20.0, *updated.TotalAmount)
	})

	t.Run("price without any weight leaves total unset", func(t *testing.T) {
		f := newWasteFixture(t)
		request := f.wastes.put(&models.WasteRequest{UserID: &f.owner.ID})

		updated, err := f.service.UpdateStatus(ctx, request.ID, &validators.UpdateStatusRequest{
			Status:     "verified",
			PricePerKg: floatPtr(5),
		})
		require.NoError(t, err)
		assert.Nil(t, updated.TotalAmount)
	})

	t.Run("collected stamps collectedAt", func(t *testing.T) {
		f := newWasteFixture(t)
		request := f.wastes.put(&models.WasteRequest{UserID: &f.owner.ID, Phone: "9876543210"})

		updated, err := f.service.UpdateStatus(ctx, request.ID, &validators.UpdateStatusRequest{Status: "collected"})
		require.NoError(t, err)
		assert.NotNil(t, updated.CollectedAt)
		assert.Equal(t, 1, f.sms.count())
	})

	t.Run("completing twice credits once", func(t *testing.T) {
		f := newWasteFixture(t)
		request := f.wastes.put(&models.WasteRequest{UserID: &f.owner.ID})
		completion := func() *validators.UpdateStatusRequest {
			return &validators.UpdateStatusRequest{Status: "completed", ActualWeight: floatPtr(10), PricePerKg: floatPtr(6)}
		}

		first, err := f.service.UpdateStatus(ctx, request.ID, completion())
		require.NoError(t, err)
		assert.True(t, first.IsPaid)
		assert.NotNil(t, first.PaidAt)

		_, err = f.service.UpdateStatus(ctx, request.ID, completion())
		require.NoError(t, err)

		owner := f.users.get(f.owner.ID)
		assert.Equal(t, 60.0, owner.TotalEarnings)
		assert.Equal(t, 10.0, owner.TotalWasteCollected)
	})

	t.Run("failed credit is retried on the next completion", func(t *testing.T) {
		f := newWasteFixture(t)
		f.users.incrementFailures = 1
		request := f.wastes.put(&models.WasteRequest{UserID: &f.owner.ID})
		completion := &validators.UpdateStatusRequest{Status: "completed", ActualWeight: floatPtr(4), PricePerKg: floatPtr(5)}

		_, err := f.service.UpdateStatus(ctx, request.ID, completion)
		require.Error(t, err)

		stored, err := f.wastes.GetByID(ctx, request.ID)
		require.NoError(t, err)
		assert.False(t, stored.IsPaid)
		assert.Nil(t, stored.PaidAt)
		assert.Zero(t, f.users.get(f.owner.ID).TotalEarnings)

		updated, err := f.service.UpdateStatus(ctx, request.ID, completion)
		require.NoError(t, err)
		assert.True(t, updated.IsPaid)

		owner := f.users.get(f.owner.ID)
		assert.Equal(t, 20.0, owner.TotalEarnings)
		assert.Equal(t, 4.0, owner.TotalWasteCollected)
	})

	t.Run("concurrent completions credit once", func(t *testing.T) {
		f := newWasteFixture(t)
		request := f.wastes.put(&models.WasteRequest{UserID: &f.owner.ID, ActualWeight: floatPtr(3), TotalAmount: floatPtr(15)})

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.service.UpdateStatus(ctx, request.ID, &validators.UpdateStatusRequest{Status: "completed"})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		owner := f.users.get(f.owner.ID)
		assert.Equal(t, 15.0, owner.TotalEarnings)
		assert.Equal(t, 3.0, owner.TotalWasteCollected)
	})

	t.Run("anonymous completion is never credited", func(t *testing.T) {
		f := newWasteFixture(t)
		request := f.wastes.put(&models.WasteRequest{})

		updated, err := f.service.UpdateStatus(ctx, request.ID, &validators.UpdateStatusRequest{
			Status: "completed", ActualWeight: floatPtr(1), PricePerKg: floatPtr(1),
		})
		require.NoError(t, err)
		assert.False(t, updated.IsPaid)
	})

	t.Run("backward transitions are allowed", func(t *testing.T) {
		f := newWasteFixture(t)
		request := f.wastes.put(&models.WasteRequest{UserID: &f.owner.ID, Status: models.WasteStatusCollected})

		updated, err := f.service.UpdateStatus(ctx, request.ID, &validators.UpdateStatusRequest{Status: "pending"})
		require.NoError(t, err)
		assert.Equal(t, models.WasteStatusPending, updated.Status)
	})

	t.Run("unknown status and missing request", func(t *testing.T) {
		f := newWasteFixture(t)
		request := f.wastes.put(&models.WasteRequest{})

		_, err := f.service.UpdateStatus(ctx, request.ID, &validators.UpdateStatusRequest{Status: "lost"})
		assert.ErrorIs(t, err, utils.ErrValidation)

		_, err = f.service.UpdateStatus(ctx, primitive.NewObjectID(), &validators.UpdateStatusRequest{Status: "verified"})
		assert.ErrorIs(t, err, utils.ErrNotFound)
	})
}

func TestWasteServiceListAll(t *testing.T) {
	ctx := context.Background()
	f := newWasteFixture(t)

	for i := 0; i < 12; i++ {
		f.wastes.put(&models.WasteRequest{
			UserID:    &f.owner.ID,
			Status:    models.WasteStatusPending,
			CreatedAt: time.Now().Add(time.Duration(i) * time.Minute),
		})
	}
	f.wastes.put(&models.WasteRequest{Status: models.WasteStatusCompleted})

	items, total, err := f.service.ListAll(ctx, nil, utils.NewPaginationParams(2, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(13), total)
	assert.Len(t, items, 3)

	pending := models.WasteStatusPending
	params := utils.NewPaginationParams(1, 5)
	items, total, err = f.service.ListAll(ctx, &pending, params)
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
	assert.Equal(t, 3, params.TotalPages(total))
	require.Len(t, items, 5)
	require.NotNil(t, items[0].Owner)
	assert.Equal(t, "Owner", items[0].Owner.Name)
}

func TestWasteServiceDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("owner and admin may delete", func(t *testing.T) {
		f := newWasteFixture(t)
		mine := f.wastes.put(&models.WasteRequest{UserID: &f.owner.ID})
		other := f.wastes.put(&models.WasteRequest{UserID: &f.owner.ID})

		require.NoError(t, f.service.Delete(ctx, mine.ID, identity(f.owner)))
		require.NoError(t, f.service.Delete(ctx, other.ID, identity(f.admin)))
		assert.Empty(t, f.wastes.requests)
	})

	t.Run("others are forbidden", func(t *testing.T) {
		f := newWasteFixture(t)
		request := f.wastes.put(&models.WasteRequest{UserID: &f.owner.ID})

		err := f.service.Delete(ctx, request.ID, identity(f.stranger))
		assert.ErrorIs(t, err, utils.ErrForbidden)
		assert.Len(t, f.wastes.requests, 1)
	})

	t.Run("missing request", func(t *testing.T) {
		f := newWasteFixture(t)
		assert.ErrorIs(t, f.service.Delete(ctx, primitive.NewObjectID(), identity(f.admin)), utils.ErrNotFound)
	})

	t.Run("removes the image and featured testimonials", func(t *testing.T) {
		f := newWasteFixture(t)
		created, err := f.service.Create(ctx, submission(), &f.owner.ID, pngHeader(t, 10, 10))
		require.NoError(t, err)

		f.wastes.mu.Lock()
		f.wastes.requests[created.ID].Feedback = &models.Feedback{Rating: 5, IsFeatured: true}
		f.wastes.mu.Unlock()
		require.NoError(t, f.cache.Set(ctx, utils.CacheTestimonialsKey, []string{"stale"}, time.Minute))

		require.NoError(t, f.service.Delete(ctx, created.ID, identity(f.owner)))

		exists, _ := f.storage.FileExists(ctx, created.ImageKey)
		assert.False(t, exists)
		assert.False(t, f.cache.has(utils.CacheTestimonialsKey))
	})
}

func TestParseBankDetails(t *testing.T) {
	details, err := parseBankDetails(nil)
	assert.NoError(t, err)
	assert.Nil(t, details)

	details, err = parseBankDetails(json.RawMessage(`""`))
	assert.NoError(t, err)
	assert.Nil(t, details)

	_, err = parseBankDetails(json.RawMessage(`"{broken"`))
	assert.Error(t, err)

	_, err = parseBankDetails(json.RawMessage(`{}`))
	assert.Error(t, err)
}
