package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"suggestbox/internal/domain"
	"suggestbox/internal/repository"
	"suggestbox/internal/store"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeRepo 特権ゲートウェイのフェイク
type fakeRepo struct {
	rows    []*domain.Suggestion
	listErr error
}

func (f *fakeRepo) Insert(ctx context.Context, row repository.NewSuggestion) error {
	f.rows = append(f.rows, newRow(fmt.Sprintf("id-%d", len(f.rows)+1), row))
	return nil
}

func (f *fakeRepo) ListAll(ctx context.Context) ([]*domain.Suggestion, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.rows, nil
}

func (f *fakeRepo) UpdateResponse(ctx context.Context, id string, patch repository.ResponsePatch) error {
	for _, r := range f.rows {
		if r.ID == id {
			r.AdminResponse = patch.AdminResponse
			r.AdminRespondedAt = patch.AdminRespondedAt
			r.Status = patch.Status
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeRepo) Delete(ctx context.Context, id string) error {
	for i, r := range f.rows {
		if r.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func newRow(id string, row repository.NewSuggestion) *domain.Suggestion {
	return &domain.Suggestion{
		ID:         id,
		Content:    row.Content,
		Category:   row.Category,
		UserID:     row.UserID,
		AuthorName: row.AuthorName,
		Status:     domain.StatusOpen,
		CreatedAt:  time.Now(),
	}
}

// fakeMemberGateway 会員ゲートウェイのフェイク。
// 挿入された行とトークンを記録し、repo のフェイクにも書き込む。
type fakeMemberGateway struct {
	repo       *fakeRepo
	lastToken  string
	lastRow    repository.NewSuggestion
	insertErr  error
	insertSeen int
}

func (f *fakeMemberGateway) Insert(ctx context.Context, row repository.NewSuggestion, accessToken string) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.insertSeen++
	f.lastRow = row
	f.lastToken = accessToken
	return f.repo.Insert(ctx, row)
}

// fakeKV インメモリ KV
type fakeKV struct {
	data map[string]string
}

func newFakeKV() *fakeKV { return &fakeKV{data: map[string]string{}} }

func (f *fakeKV) Get(ctx context.Context, key string) (string, error) {
	v, ok := f.data[key]
	if !ok {
		return "", store.ErrMiss
	}
	return v, nil
}

func (f *fakeKV) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	f.data[key] = value
	return nil
}

func (f *fakeKV) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

type serviceFixture struct {
	svc    *suggestionService
	repo   *fakeRepo
	member *fakeMemberGateway
	kv     *fakeKV
}

func newFixture() *serviceFixture {
	repo := &fakeRepo{}
	member := &fakeMemberGateway{repo: repo}
	kv := newFakeKV()
	svc := &suggestionService{
		repo:   repo,
		member: member,
		kv:     kv,
		logger: zap.NewNop(),
		now:    func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) },
	}
	return &serviceFixture{svc: svc, repo: repo, member: member, kv: kv}
}

var (
	memberActor = domain.Principal{MemberID: "member-1"}
	adminActor  = domain.Principal{Admin: true}
)

func TestCreateTrimsAndNormalizes(t *testing.T) {
	fx := newFixture()

	err := fx.svc.Create(context.Background(), CreateRequest{
		Content:     "  wider corridor  ",
		Category:    "facility",
		Actor:       memberActor,
		AccessToken: "token-1",
	})
	require.NoError(t, err)

	require.Equal(t, "wider corridor", fx.member.lastRow.Content)
	require.Equal(t, "facility", fx.member.lastRow.Category)
	require.NotNil(t, fx.member.lastRow.UserID)
	require.Equal(t, "member-1", *fx.member.lastRow.UserID)
	require.Equal(t, "token-1", fx.member.lastToken, "the caller token must travel with the insert")
}

func TestCreateUnknownCategoryFallsBackToOther(t *testing.T) {
	fx := newFixture()

	err := fx.svc.Create(context.Background(), CreateRequest{
		Content:     "something",
		Category:    "banana",
		Actor:       memberActor,
		AccessToken: "token-1",
	})
	require.NoError(t, err)
	require.Equal(t, domain.CategoryOther, fx.member.lastRow.Category)
}

func TestCreateEmptyContent(t *testing.T) {
	fx := newFixture()

	err := fx.svc.Create(context.Background(), CreateRequest{
		Content: "   ",
		Actor:   memberActor,
	})
	require.ErrorIs(t, err, domain.ErrEmptyContent)
	require.Zero(t, fx.member.insertSeen, "no row may be inserted")
}

func TestCreateAnonymousDenied(t *testing.T) {
	fx := newFixture()

	err := fx.svc.Create(context.Background(), CreateRequest{
		Content: "hello",
		Actor:   domain.Anonymous,
	})
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	require.Zero(t, fx.member.insertSeen)
}

func TestCreateLegacyDerivesGuestHandle(t *testing.T) {
	fx := newFixture()

	err := fx.svc.CreateLegacy(context.Background(), CreateLegacyRequest{
		Content:  "more benches",
		PosterID: "2b1f8d0a-9c55-4f4e-8a63-0f0e7a1b2c3d",
	})
	require.NoError(t, err)
	require.NotNil(t, fx.member.lastRow.AuthorName)
	require.Regexp(t, `^guest-[0-9a-f]{8}$`, *fx.member.lastRow.AuthorName)
	require.Empty(t, fx.member.lastToken, "anonymous insert carries no member token")

	// 同じ投稿者 Cookie なら同じハンドルになる
	first := *fx.member.lastRow.AuthorName
	err = fx.svc.CreateLegacy(context.Background(), CreateLegacyRequest{
		Content:  "second",
		PosterID: "2b1f8d0a-9c55-4f4e-8a63-0f0e7a1b2c3d",
	})
	require.NoError(t, err)
	require.Equal(t, first, *fx.member.lastRow.AuthorName)
}

func TestCreateLegacyKeepsGivenAuthorName(t *testing.T) {
	fx := newFixture()

	err := fx.svc.CreateLegacy(context.Background(), CreateLegacyRequest{
		Content:    "fix the printer",
		AuthorName: "  山田  ",
		PosterID:   "poster-1",
	})
	require.NoError(t, err)
	require.NotNil(t, fx.member.lastRow.AuthorName)
	require.Equal(t, "山田", *fx.member.lastRow.AuthorName)
}

func TestListMemberTimelineRequiresMember(t *testing.T) {
	fx := newFixture()

	_, err := fx.svc.ListMemberTimeline(context.Background(), domain.Anonymous)
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = fx.svc.ListMemberTimeline(context.Background(), memberActor)
	require.NoError(t, err)
}

func TestTimelineDisplayName(t *testing.T) {
	fx := newFixture()
	author := "山田"
	userID := "user-42"
	fx.repo.rows = []*domain.Suggestion{
		{ID: "a", Content: "x", Category: "facility", AuthorName: &author, Status: domain.StatusOpen},
		{ID: "b", Content: "y", Category: "other", UserID: &userID, Status: domain.StatusOpen},
		{ID: "c", Content: "z", Category: "other", Status: domain.StatusOpen},
	}

	entries, err := fx.svc.ListMemberTimeline(context.Background(), memberActor)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "山田", entries[0].DisplayName)
	require.Regexp(t, `^member-[0-9a-f]{8}$`, entries[1].DisplayName)
	require.Equal(t, "匿名メンバー", entries[2].DisplayName)
	require.Equal(t, "設備修繕", entries[0].CategoryLabel)
}

func TestTimelineNormalizesStoredCategories(t *testing.T) {
	fx := newFixture()
	fx.repo.rows = []*domain.Suggestion{
		{ID: "a", Content: "x", Category: "legacy-category", Status: domain.StatusOpen},
	}

	entries, err := fx.svc.ListMemberTimeline(context.Background(), memberActor)
	require.NoError(t, err)
	require.Equal(t, domain.CategoryOther, entries[0].Category)
}

// setResponse → clearResponse のサイクル。
// setResponse(id, "") は clearResponse(id) と同じ状態を残すこと。
func TestResponseCycle(t *testing.T) {
	fx := newFixture()
	require.NoError(t, fx.repo.Insert(context.Background(), repository.NewSuggestion{Content: "x", Category: "other"}))
	id := fx.repo.rows[0].ID
	ctx := context.Background()

	require.NoError(t, fx.svc.SetResponse(ctx, adminActor, id, "  we will fix it  "))
	row := fx.repo.rows[0]
	require.Equal(t, domain.StatusResponded, row.Status)
	require.NotNil(t, row.AdminResponse)
	require.Equal(t, "we will fix it", *row.AdminResponse)
	require.NotNil(t, row.AdminRespondedAt)
	require.True(t, row.Consistent())

	require.NoError(t, fx.svc.SetResponse(ctx, adminActor, id, ""))
	require.Equal(t, domain.StatusOpen, row.Status)
	require.Nil(t, row.AdminResponse)
	require.Nil(t, row.AdminRespondedAt)
	require.True(t, row.Consistent())

	// ClearResponse と同値であること
	require.NoError(t, fx.svc.SetResponse(ctx, adminActor, id, "again"))
	require.NoError(t, fx.svc.ClearResponse(ctx, adminActor, id))
	require.Equal(t, domain.StatusOpen, row.Status)
	require.Nil(t, row.AdminResponse)
	require.Nil(t, row.AdminRespondedAt)
}

// 管理者でない呼び出しは一切の管理操作を拒み、行は残ること
func TestAdminOperationsDenyNonAdmins(t *testing.T) {
	fx := newFixture()
	require.NoError(t, fx.repo.Insert(context.Background(), repository.NewSuggestion{Content: "x", Category: "other"}))
	id := fx.repo.rows[0].ID
	ctx := context.Background()

	for _, actor := range []domain.Principal{domain.Anonymous, memberActor} {
		require.ErrorIs(t, fx.svc.Delete(ctx, actor, id), domain.ErrUnauthorized)
		require.ErrorIs(t, fx.svc.SetResponse(ctx, actor, id, "nope"), domain.ErrUnauthorized)
		require.ErrorIs(t, fx.svc.ClearResponse(ctx, actor, id), domain.ErrUnauthorized)
		_, err := fx.svc.ListAdminDashboard(ctx, actor, "")
		require.ErrorIs(t, err, domain.ErrUnauthorized)
	}
	require.Len(t, fx.repo.rows, 1, "the row must still be present")
	require.Equal(t, domain.StatusOpen, fx.repo.rows[0].Status)
}

func TestDelete(t *testing.T) {
	fx := newFixture()
	require.NoError(t, fx.repo.Insert(context.Background(), repository.NewSuggestion{Content: "x", Category: "other"}))
	id := fx.repo.rows[0].ID

	require.NoError(t, fx.svc.Delete(context.Background(), adminActor, id))
	require.Empty(t, fx.repo.rows)

	require.ErrorIs(t, fx.svc.Delete(context.Background(), adminActor, id), domain.ErrNotFound)
}

func TestDashboardSummary(t *testing.T) {
	fx := newFixture()
	response := "done"
	now := time.Now()
	fx.repo.rows = []*domain.Suggestion{
		{ID: "a", Content: "1", Category: "facility", Status: domain.StatusOpen},
		{ID: "b", Content: "2", Category: "facility", AdminResponse: &response, AdminRespondedAt: &now, Status: domain.StatusResponded},
		{ID: "c", Content: "3", Category: "event", Status: domain.StatusOpen},
	}

	dashboard, err := fx.svc.ListAdminDashboard(context.Background(), adminActor, "")
	require.NoError(t, err)
	require.Equal(t, 3, dashboard.Summary.Total)
	require.Equal(t, 2, dashboard.Summary.Open)
	require.Equal(t, 1, dashboard.Summary.Responded)
	require.Equal(t, 2, dashboard.Summary.ByCategory["facility"])
	require.Equal(t, 1, dashboard.Summary.ByCategory["event"])
	require.Len(t, dashboard.Suggestions, 3)

	// カテゴリ絞り込みは行だけに効き、集計は全体のまま
	filtered, err := fx.svc.ListAdminDashboard(context.Background(), adminActor, "event")
	require.NoError(t, err)
	require.Len(t, filtered.Suggestions, 1)
	require.Equal(t, 3, filtered.Summary.Total)
}

func TestLegacyTimelineUsesCache(t *testing.T) {
	fx := newFixture()
	fx.repo.rows = []*domain.Suggestion{
		{ID: "a", Content: "cached?", Category: "other", Status: domain.StatusOpen},
	}
	ctx := context.Background()

	entries, err := fx.svc.ListLegacyTimeline(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Contains(t, fx.kv.data, legacyTimelineCacheKey)

	// ストアが落ちてもキャッシュが生きている間は応答する
	fx.repo.listErr = fmt.Errorf("store down")
	entries, err = fx.svc.ListLegacyTimeline(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestWritesInvalidateLegacyCache(t *testing.T) {
	fx := newFixture()
	require.NoError(t, fx.repo.Insert(context.Background(), repository.NewSuggestion{Content: "x", Category: "other"}))
	ctx := context.Background()

	_, err := fx.svc.ListLegacyTimeline(ctx)
	require.NoError(t, err)
	require.Contains(t, fx.kv.data, legacyTimelineCacheKey)

	require.NoError(t, fx.svc.SetResponse(ctx, adminActor, fx.repo.rows[0].ID, "noted"))
	require.NotContains(t, fx.kv.data, legacyTimelineCacheKey)
}
