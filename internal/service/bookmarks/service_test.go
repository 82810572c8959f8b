package bookmarks

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookmarkd/internal/domain"
	"bookmarkd/internal/domain/models"
	"bookmarkd/internal/domain/repositories"
	"bookmarkd/internal/domain/services"
	"bookmarkd/internal/favicon"
	"bookmarkd/internal/repository/sqlite"
)

type stubResolver struct {
	mu    sync.Mutex
	icons map[string]*models.Icon
	calls []string
}

func newStubResolver() *stubResolver {
	return &stubResolver{icons: map[string]*models.Icon{}}
}

func (r *stubResolver) Resolve(ctx context.Context, pageURL string) *models.Icon {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, pageURL)
	return r.icons[pageURL]
}

func (r *stubResolver) set(pageURL string, icon *models.Icon) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.icons[pageURL] = icon
}

func (r *stubResolver) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openStore(t *testing.T, path string) *repositories.Store {
	t.Helper()
	store, err := sqlite.Open(path, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestService(t *testing.T) (*Service, *stubResolver) {
	t.Helper()
	resolver := newStubResolver()
	return NewService(openStore(t, ":memory:"), resolver, nil, testLogger()), resolver
}

func ptr(id int64) *int64 { return &id }

func mustFolder(t *testing.T, s *Service, name string, parent *int64) *models.Folder {
	t.Helper()
	f, err := s.CreateFolder(context.Background(), &services.CreateFolderRequest{Name: name, ParentID: parent})
	require.NoError(t, err)
	return f
}

func mustBookmark(t *testing.T, s *Service, name string, folderID int64) *models.Bookmark {
	t.Helper()
	b, err := s.CreateBookmark(context.Background(), &services.CreateBookmarkRequest{
		Name: name, URL: "http://example.com/" + name, FolderID: folderID,
	})
	require.NoError(t, err)
	return b
}

// assertInvariants checks contiguity of every sibling group and acyclicity
func assertInvariants(t *testing.T, s *Service) *models.TreeData {
	t.Helper()
	data, err := s.FetchTree(context.Background())
	require.NoError(t, err)

	folderGroups := map[int64][]int{}
	parents := map[int64]*int64{}
	for _, f := range data.Folders {
		folderGroups[groupKey(f.ParentID)] = append(folderGroups[groupKey(f.ParentID)], f.Position)
		parents[f.ID] = f.ParentID
	}
	bookmarkGroups := map[int64][]int{}
	for _, b := range data.Bookmarks {
		_, ok := parents[b.FolderID]
		assert.True(t, ok, "bookmark %d references missing folder %d", b.ID, b.FolderID)
		bookmarkGroups[b.FolderID] = append(bookmarkGroups[b.FolderID], b.Position)
	}

	for key, positions := range folderGroups {
		assertContiguous(t, positions, "folders under %d", key)
	}
	for key, positions := range bookmarkGroups {
		assertContiguous(t, positions, "bookmarks in %d", key)
	}

	for id := range parents {
		seen := map[int64]bool{}
		for cur := parents[id]; cur != nil; cur = parents[*cur] {
			require.False(t, seen[*cur], "cycle through folder %d", *cur)
			seen[*cur] = true
		}
	}
	return data
}

func assertContiguous(t *testing.T, positions []int, msgAndArgs ...any) {
	t.Helper()
	sorted := append([]int(nil), positions...)
	sort.Ints(sorted)
	want := make([]int, len(sorted))
	for i := range want {
		want[i] = i
	}
	assert.Equal(t, want, sorted, msgAndArgs...)
}

func positionsByName(data *models.TreeData) map[string]int {
	out := map[string]int{}
	for _, f := range data.Folders {
		out[f.Name] = f.Position
	}
	for _, b := range data.Bookmarks {
		out[b.Name] = b.Position
	}
	return out
}

func TestCreateFolder(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)

	a := mustFolder(t, s, "a", nil)
	b := mustFolder(t, s, "b", ptr(0))
	child := mustFolder(t, s, "child", &a.ID)

	assert.Equal(t, 0, a.Position)
	assert.Equal(t, 1, b.Position)
	assert.Nil(t, b.ParentID, "parent 0 means root")
	assert.Equal(t, 0, child.Position)
	assert.False(t, child.IsOpen)

	tests := []struct {
		name string
		req  *services.CreateFolderRequest
	}{
		{name: "missing parent", req: &services.CreateFolderRequest{Name: "x", ParentID: ptr(999)}},
		{name: "empty name", req: &services.CreateFolderRequest{Name: "  "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateFolder(ctx, tt.req)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		})
	}
	assertInvariants(t, s)
}

func TestCreateBookmark_StoresFavicon(t *testing.T) {
	ctx := context.Background()
	s, resolver := newTestService(t)
	folder := mustFolder(t, s, "f", nil)

	icon := &models.Icon{ContentType: "image/png", Data: []byte("png")}
	resolver.set("https://with-icon.example/", icon)

	withIcon, err := s.CreateBookmark(ctx, &services.CreateBookmarkRequest{Name: "w", URL: "https://with-icon.example/", FolderID: folder.ID})
	require.NoError(t, err)
	without, err := s.CreateBookmark(ctx, &services.CreateBookmarkRequest{Name: "n", URL: "https://none.example/", FolderID: folder.ID})
	require.NoError(t, err)

	assert.Equal(t, 0, withIcon.Position)
	assert.Equal(t, 1, without.Position)

	got, err := s.GetFavicon(ctx, withIcon.ID)
	require.NoError(t, err)
	assert.Equal(t, "image/png", got.ContentType)
	assert.Equal(t, []byte("png"), got.Data)

	_, err = s.GetFavicon(ctx, without.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateBookmark_Invalid(t *testing.T) {
	ctx := context.Background()
	s, resolver := newTestService(t)
	folder := mustFolder(t, s, "f", nil)

	tests := []struct {
		name string
		req  *services.CreateBookmarkRequest
	}{
		{name: "missing folder", req: &services.CreateBookmarkRequest{Name: "a", URL: "http://x", FolderID: 999}},
		{name: "no folder", req: &services.CreateBookmarkRequest{Name: "a", URL: "http://x"}},
		{name: "relative url", req: &services.CreateBookmarkRequest{Name: "a", URL: "/path", FolderID: folder.ID}},
		{name: "unsupported scheme", req: &services.CreateBookmarkRequest{Name: "a", URL: "ftp://x", FolderID: folder.ID}},
		{name: "empty url", req: &services.CreateBookmarkRequest{Name: "a", FolderID: folder.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateBookmark(ctx, tt.req)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		})
	}
	assert.Zero(t, resolver.callCount(), "no resolution for rejected requests")
}

func TestCreateBookmark_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	folder := mustFolder(t, s, "root", nil)
	require.Equal(t, int64(1), folder.ID)
	mustBookmark(t, s, "existing", folder.ID)

	_, err := s.CreateBookmark(ctx, &services.CreateBookmarkRequest{Name: "A", URL: "http://x", FolderID: 1})
	require.NoError(t, err)

	data, err := s.FetchTree(ctx)
	require.NoError(t, err)
	var found *models.Bookmark
	for i := range data.Bookmarks {
		if data.Bookmarks[i].Name == "A" {
			found = &data.Bookmarks[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, int64(1), found.FolderID)
	assert.Equal(t, 1, found.Position)
	assert.Equal(t, "http://x", found.URL)
}

func TestReorderSiblings_RootFolders(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	f1 := mustFolder(t, s, "F1", nil)
	f2 := mustFolder(t, s, "F2", nil)

	require.NoError(t, s.ReorderSiblings(ctx, models.ItemTypeFolder, nil, []int64{f2.ID, f1.ID}))

	data := assertInvariants(t, s)
	assert.Equal(t, map[string]int{"F1": 1, "F2": 0}, positionsByName(data))
}

func TestReorderSiblings_MismatchLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	folder := mustFolder(t, s, "f", nil)
	a := mustBookmark(t, s, "a", folder.ID)
	b := mustBookmark(t, s, "b", folder.ID)
	c := mustBookmark(t, s, "c", folder.ID)
	other := mustFolder(t, s, "other", nil)
	foreign := mustBookmark(t, s, "foreign", other.ID)

	before, err := s.FetchTree(ctx)
	require.NoError(t, err)

	tests := []struct {
		name string
		ids  []int64
	}{
		{name: "subset", ids: []int64{c.ID, a.ID}},
		{name: "superset", ids: []int64{c.ID, b.ID, a.ID, foreign.ID}},
		{name: "duplicate", ids: []int64{c.ID, c.ID, a.ID}},
		{name: "foreign id", ids: []int64{c.ID, foreign.ID, a.ID}},
		{name: "unknown id", ids: []int64{c.ID, 999, a.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.ReorderSiblings(ctx, models.ItemTypeBookmark, &folder.ID, tt.ids)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		})
	}

	after, err := s.FetchTree(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("tree changed after rejected reorders (-before +after):\n%s", diff)
	}
}

func TestReorderSiblings_Invalid(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)

	assert.ErrorIs(t, s.ReorderSiblings(ctx, "widgets", nil, nil), domain.ErrInvalidArgument)
	assert.ErrorIs(t, s.ReorderSiblings(ctx, models.ItemTypeBookmark, nil, nil), domain.ErrInvalidArgument)
	assert.ErrorIs(t, s.ReorderSiblings(ctx, models.ItemTypeFolder, ptr(42), nil), domain.ErrInvalidArgument)
	assert.NoError(t, s.ReorderSiblings(ctx, models.ItemTypeFolder, nil, []int64{}), "empty root group")
}

func TestReorderItems_InfersContainer(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	parent := mustFolder(t, s, "parent", nil)
	x := mustFolder(t, s, "x", &parent.ID)
	y := mustFolder(t, s, "y", &parent.ID)
	z := mustFolder(t, s, "z", &parent.ID)

	require.NoError(t, s.ReorderItems(ctx, models.ItemTypeFolder, []int64{z.ID, x.ID, y.ID}))

	data := assertInvariants(t, s)
	positions := positionsByName(data)
	assert.Equal(t, 0, positions["z"])
	assert.Equal(t, 1, positions["x"])
	assert.Equal(t, 2, positions["y"])

	assert.ErrorIs(t, s.ReorderItems(ctx, models.ItemTypeFolder, nil), domain.ErrInvalidArgument)
	assert.ErrorIs(t, s.ReorderItems(ctx, models.ItemTypeBookmark, []int64{77}), domain.ErrInvalidArgument)
}

func TestMoveItem_AppendsAndRenumbersSource(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	src := mustFolder(t, s, "src", nil)
	dst := mustFolder(t, s, "dst", nil)
	b0 := mustBookmark(t, s, "b0", src.ID)
	b1 := mustBookmark(t, s, "b1", src.ID)
	mustBookmark(t, s, "b2", src.ID)
	mustBookmark(t, s, "d0", dst.ID)

	require.NoError(t, s.MoveItem(ctx, models.ItemTypeBookmark, b1.ID, &dst.ID))

	data := assertInvariants(t, s)
	positions := positionsByName(data)
	assert.Equal(t, 1, positions["b1"], "appended after d0")
	assert.Equal(t, 0, positions["b0"])
	assert.Equal(t, 1, positions["b2"], "source closed the gap")

	// Moving within the same folder sends the item to the end
	require.NoError(t, s.MoveItem(ctx, models.ItemTypeBookmark, b0.ID, &src.ID))
	positions = positionsByName(assertInvariants(t, s))
	assert.Equal(t, 0, positions["b2"])
	assert.Equal(t, 1, positions["b0"])

	assert.ErrorIs(t, s.MoveItem(ctx, models.ItemTypeBookmark, b0.ID, nil), domain.ErrInvalidArgument)
	assert.ErrorIs(t, s.MoveItem(ctx, models.ItemTypeBookmark, b0.ID, ptr(999)), domain.ErrInvalidArgument)
	assert.ErrorIs(t, s.MoveItem(ctx, models.ItemTypeBookmark, 999, &dst.ID), domain.ErrNotFound)
}

func TestMoveItem_Folders(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	a := mustFolder(t, s, "a", nil)
	b := mustFolder(t, s, "b", nil)
	mustFolder(t, s, "c", nil)
	child := mustFolder(t, s, "child", &b.ID)

	require.NoError(t, s.MoveItem(ctx, models.ItemTypeFolder, a.ID, &b.ID))
	positions := positionsByName(assertInvariants(t, s))
	assert.Equal(t, 1, positions["a"], "appended after child")
	assert.Equal(t, 0, positions["b"])
	assert.Equal(t, 1, positions["c"])

	require.NoError(t, s.MoveItem(ctx, models.ItemTypeFolder, child.ID, ptr(0)))
	data := assertInvariants(t, s)
	for _, f := range data.Folders {
		if f.ID == child.ID {
			assert.Nil(t, f.ParentID)
			assert.Equal(t, 2, f.Position)
		}
	}
}

func TestMoveItem_RejectsCycles(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	top := mustFolder(t, s, "top", nil)
	mid := mustFolder(t, s, "mid", &top.ID)
	leaf := mustFolder(t, s, "leaf", &mid.ID)

	before, err := s.FetchTree(ctx)
	require.NoError(t, err)

	for _, dest := range []int64{top.ID, mid.ID, leaf.ID} {
		err := s.MoveItem(ctx, models.ItemTypeFolder, top.ID, &dest)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument, "move top under %d", dest)
	}

	after, err := s.FetchTree(ctx)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(before, after))

	// Moving a descendant upwards is fine
	require.NoError(t, s.MoveItem(ctx, models.ItemTypeFolder, leaf.ID, &top.ID))
	assertInvariants(t, s)
}

// lockRecorder logs the order of folder reads and lock acquisitions
type lockRecorder struct {
	repositories.FolderRepository
	mu    sync.Mutex
	calls []string
}

func (r *lockRecorder) record(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *lockRecorder) reset() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	calls := r.calls
	r.calls = nil
	return calls
}

func (r *lockRecorder) GetByID(ctx context.Context, id int64) (*models.Folder, error) {
	r.record("get")
	return r.FolderRepository.GetByID(ctx, id)
}

func (r *lockRecorder) LockTree(ctx context.Context) error {
	r.record("tree")
	return r.FolderRepository.LockTree(ctx)
}

func (r *lockRecorder) LockContainer(ctx context.Context, parentID *int64) error {
	r.record("group")
	return r.FolderRepository.LockContainer(ctx, parentID)
}

func TestFolderMoveAndDelete_TakeTreeLockFirst(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, ":memory:")
	recorder := &lockRecorder{FolderRepository: store.Folders}
	store.Folders = recorder
	s := NewService(store, newStubResolver(), nil, testLogger())

	p := mustFolder(t, s, "p", nil)
	q := mustFolder(t, s, "q", nil)
	a := mustFolder(t, s, "a", &p.ID)
	recorder.reset()

	require.NoError(t, s.MoveItem(ctx, models.ItemTypeFolder, a.ID, &q.ID))
	calls := recorder.reset()
	require.NotEmpty(t, calls)
	assert.Equal(t, "tree", calls[0], "move locks the tree before reading ancestry: %v", calls)
	assert.Equal(t, "get", calls[len(calls)-1], "placement is reloaded after the group locks: %v", calls)

	require.NoError(t, s.DeleteItem(ctx, models.ItemTypeFolder, q.ID))
	calls = recorder.reset()
	assert.Equal(t, []string{"tree", "get", "group", "get"}, calls)
	assertInvariants(t, s)
}

func TestDeleteItem_CascadesAndRenumbers(t *testing.T) {
	ctx := context.Background()
	s, resolver := newTestService(t)
	resolver.set("http://example.com/deep", &models.Icon{ContentType: "image/png", Data: []byte{1}})

	first := mustFolder(t, s, "first", nil)
	doomed := mustFolder(t, s, "doomed", nil)
	mustFolder(t, s, "last", nil)
	nested := mustFolder(t, s, "nested", &doomed.ID)
	deep := mustBookmark(t, s, "deep", nested.ID)
	mustBookmark(t, s, "keep", first.ID)

	require.NoError(t, s.DeleteItem(ctx, models.ItemTypeFolder, doomed.ID))

	data := assertInvariants(t, s)
	names := positionsByName(data)
	assert.NotContains(t, names, "doomed")
	assert.NotContains(t, names, "nested")
	assert.NotContains(t, names, "deep")
	assert.Equal(t, 1, names["last"])
	_, err := s.GetFavicon(ctx, deep.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, s.DeleteItem(ctx, models.ItemTypeFolder, doomed.ID), domain.ErrNotFound)
	assert.ErrorIs(t, s.DeleteItem(ctx, "widgets", 1), domain.ErrInvalidArgument)
}

func TestDeleteItem_Bookmark(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	folder := mustFolder(t, s, "f", nil)
	a := mustBookmark(t, s, "a", folder.ID)
	mustBookmark(t, s, "b", folder.ID)

	require.NoError(t, s.DeleteItem(ctx, models.ItemTypeBookmark, a.ID))
	assert.Equal(t, 0, positionsByName(assertInvariants(t, s))["b"])
	assert.ErrorIs(t, s.DeleteItem(ctx, models.ItemTypeBookmark, a.ID), domain.ErrNotFound)
}

func TestUpdateItem(t *testing.T) {
	ctx := context.Background()
	s, resolver := newTestService(t)
	home := mustFolder(t, s, "home", nil)
	work := mustFolder(t, s, "work", nil)
	bm := mustBookmark(t, s, "site", home.ID)

	newIcon := &models.Icon{ContentType: "image/svg+xml", Data: []byte("<svg/>")}
	resolver.set("https://new.example/", newIcon)

	name, rawURL := "renamed", "https://new.example/"
	require.NoError(t, s.UpdateItem(ctx, &services.UpdateItemRequest{
		ItemType: models.ItemTypeBookmark,
		ID:       bm.ID,
		Name:     &name,
		URL:      &rawURL,
		FolderID: &work.ID,
	}))

	data := assertInvariants(t, s)
	require.Len(t, data.Bookmarks, 1)
	got := data.Bookmarks[0]
	assert.Equal(t, "renamed", got.Name)
	assert.Equal(t, "https://new.example/", got.URL)
	assert.Equal(t, work.ID, got.FolderID)

	fav, err := s.GetFavicon(ctx, bm.ID)
	require.NoError(t, err)
	assert.Equal(t, "image/svg+xml", fav.ContentType)

	open := true
	require.NoError(t, s.UpdateItem(ctx, &services.UpdateItemRequest{ItemType: models.ItemTypeFolder, ID: work.ID, IsOpen: &open}))
	data = assertInvariants(t, s)
	for _, f := range data.Folders {
		assert.Equal(t, f.ID == work.ID, f.IsOpen, f.Name)
	}

	assert.ErrorIs(t, s.UpdateItem(ctx, &services.UpdateItemRequest{ItemType: models.ItemTypeFolder, ID: 999}), domain.ErrNotFound)
	assert.ErrorIs(t, s.RenameItem(ctx, models.ItemTypeBookmark, 999, "x"), domain.ErrNotFound)
	assert.ErrorIs(t, s.RenameItem(ctx, models.ItemTypeFolder, home.ID, ""), domain.ErrInvalidArgument)
}

func TestRequestsAreNotModified(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)

	folderReq := &services.CreateFolderRequest{Name: "  padded  ", ParentID: ptr(0)}
	folder, err := s.CreateFolder(ctx, folderReq)
	require.NoError(t, err)
	assert.Equal(t, "padded", folder.Name)
	assert.Empty(t, cmp.Diff(&services.CreateFolderRequest{Name: "  padded  ", ParentID: ptr(0)}, folderReq))

	bookmarkReq := &services.CreateBookmarkRequest{Name: " site ", URL: " http://example.com/a ", FolderID: folder.ID}
	bm, err := s.CreateBookmark(ctx, bookmarkReq)
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/a", bm.URL)
	assert.Equal(t, " site ", bookmarkReq.Name)
	assert.Equal(t, " http://example.com/a ", bookmarkReq.URL)

	name, rawURL := "  renamed ", " http://example.com/b "
	updateReq := &services.UpdateItemRequest{ItemType: models.ItemTypeBookmark, ID: bm.ID, Name: &name, URL: &rawURL}
	require.NoError(t, s.UpdateItem(ctx, updateReq))
	assert.Same(t, &name, updateReq.Name)
	assert.Same(t, &rawURL, updateReq.URL)
	assert.Equal(t, "  renamed ", name)
	assert.Equal(t, " http://example.com/b ", rawURL)

	data := assertInvariants(t, s)
	require.Len(t, data.Bookmarks, 1)
	assert.Equal(t, "renamed", data.Bookmarks[0].Name)
	assert.Equal(t, "http://example.com/b", data.Bookmarks[0].URL)
}

func TestUpdateItem_FailedMoveRollsBackRename(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	top := mustFolder(t, s, "top", nil)
	child := mustFolder(t, s, "child", &top.ID)

	name := "renamed"
	err := s.UpdateItem(ctx, &services.UpdateItemRequest{
		ItemType: models.ItemTypeFolder,
		ID:       top.ID,
		Name:     &name,
		ParentID: &child.ID,
	})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	names := positionsByName(assertInvariants(t, s))
	assert.Contains(t, names, "top")
	assert.NotContains(t, names, "renamed")
}

func TestUpdateBookmarkURL_FailedResolutionDropsStaleFavicon(t *testing.T) {
	ctx := context.Background()
	s, resolver := newTestService(t)
	folder := mustFolder(t, s, "f", nil)
	resolver.set("http://example.com/a", &models.Icon{ContentType: "image/png", Data: []byte("a")})
	bm := mustBookmark(t, s, "a", folder.ID)

	_, err := s.GetFavicon(ctx, bm.ID)
	require.NoError(t, err)

	require.NoError(t, s.UpdateBookmarkURL(ctx, bm.ID, "http://no-icon.example"))
	_, err = s.GetFavicon(ctx, bm.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, s.UpdateBookmarkURL(ctx, 999, "http://x"), domain.ErrNotFound)
	assert.ErrorIs(t, s.UpdateBookmarkURL(ctx, bm.ID, "not a url"), domain.ErrInvalidArgument)
}

func TestSetFolderOpen(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	f := mustFolder(t, s, "f", nil)

	require.NoError(t, s.SetFolderOpen(ctx, f.ID, true))
	data, err := s.FetchTree(ctx)
	require.NoError(t, err)
	assert.True(t, data.Folders[0].IsOpen)

	assert.ErrorIs(t, s.SetFolderOpen(ctx, 999, true), domain.ErrNotFound)
}

func TestOperationSequence_KeepsPositionsContiguous(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)

	var folders []*models.Folder
	for _, name := range []string{"a", "b", "c", "d"} {
		folders = append(folders, mustFolder(t, s, name, nil))
	}
	sub := mustFolder(t, s, "sub", &folders[0].ID)
	var marks []*models.Bookmark
	for _, name := range []string{"m1", "m2", "m3", "m4"} {
		marks = append(marks, mustBookmark(t, s, name, folders[1].ID))
	}

	steps := []func() error{
		func() error { return s.MoveItem(ctx, models.ItemTypeFolder, folders[2].ID, &sub.ID) },
		func() error { return s.MoveItem(ctx, models.ItemTypeBookmark, marks[0].ID, &sub.ID) },
		func() error { return s.DeleteItem(ctx, models.ItemTypeBookmark, marks[2].ID) },
		func() error { return s.ReorderItems(ctx, models.ItemTypeBookmark, []int64{marks[3].ID, marks[1].ID}) },
		func() error { return s.MoveItem(ctx, models.ItemTypeFolder, sub.ID, nil) },
		func() error { return s.DeleteItem(ctx, models.ItemTypeFolder, folders[0].ID) },
		func() error { return s.MoveItem(ctx, models.ItemTypeFolder, folders[3].ID, &folders[1].ID) },
	}
	for i, step := range steps {
		require.NoError(t, step(), "step %d", i)
		assertInvariants(t, s)
	}
}

func TestConcurrentCreates_UniquePositions(t *testing.T) {
	store := openStore(t, t.TempDir()+"/concurrent.db")
	s := NewService(store, newStubResolver(), nil, testLogger())
	parent := mustFolder(t, s, "parent", nil)

	const n = 16
	var wg sync.WaitGroup
	errs := make(chan error, 2*n)
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := s.CreateFolder(context.Background(), &services.CreateFolderRequest{Name: "f", ParentID: &parent.ID})
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := s.CreateBookmark(context.Background(), &services.CreateBookmarkRequest{Name: "b", URL: "http://x", FolderID: parent.ID})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	data := assertInvariants(t, s)
	assert.Len(t, data.Folders, n+1)
	assert.Len(t, data.Bookmarks, n)
}

func TestAsyncMode_AttachesFaviconAfterCommit(t *testing.T) {
	ctx := context.Background()
	resolver := newStubResolver()
	resolver.set("http://icon.example", &models.Icon{ContentType: "image/png", Data: []byte("p")})
	dispatcher := favicon.NewDispatcher(2, testLogger())
	s := NewService(openStore(t, ":memory:"), resolver, dispatcher, testLogger())

	folder := mustFolder(t, s, "f", nil)
	bm, err := s.CreateBookmark(ctx, &services.CreateBookmarkRequest{Name: "b", URL: "http://icon.example", FolderID: folder.ID})
	require.NoError(t, err)
	gone, err := s.CreateBookmark(ctx, &services.CreateBookmarkRequest{Name: "g", URL: "http://icon.example", FolderID: folder.ID})
	require.NoError(t, err)
	require.NoError(t, s.DeleteItem(ctx, models.ItemTypeBookmark, gone.ID))

	require.NoError(t, s.Close(ctx))

	fav, err := s.GetFavicon(ctx, bm.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("p"), fav.Data)
	_, err = s.GetFavicon(ctx, gone.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "no favicon for a deleted bookmark")
	assertInvariants(t, s)
}

func TestRepairPositions(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, ":memory:")
	s := NewService(store, newStubResolver(), nil, testLogger())

	// Rows written with gaps and duplicates, as left by a store without position bookkeeping
	for _, f := range []*models.Folder{{Name: "a", Position: 5}, {Name: "b", Position: 5}, {Name: "c", Position: 0}} {
		require.NoError(t, store.Folders.Create(ctx, f))
	}
	for _, b := range []*models.Bookmark{{Name: "x", URL: "http://x", FolderID: 1, Position: 3}, {Name: "y", URL: "http://y", FolderID: 1, Position: 9}} {
		require.NoError(t, store.Bookmarks.Create(ctx, b))
	}

	report, err := s.RepairPositions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Folders)
	assert.Equal(t, 2, report.Bookmarks)

	positions := positionsByName(assertInvariants(t, s))
	assert.Equal(t, map[string]int{"c": 0, "a": 1, "b": 2, "x": 0, "y": 1}, positions)

	report, err = s.RepairPositions(ctx)
	require.NoError(t, err)
	assert.Equal(t, &RepairReport{}, report, "second pass is a no-op")
}

func TestRepairPositions_LegacyDatabaseWithoutPositions(t *testing.T) {
	ctx := context.Background()
	path := t.TempDir() + "/legacy.db"

	db, err := sqlite.OpenConnection(path)
	require.NoError(t, err)
	_, err = db.Exec(`
		CREATE TABLE folders (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL, parent_id INTEGER,
			is_open BOOLEAN DEFAULT 0, FOREIGN KEY (parent_id) REFERENCES folders(id) ON DELETE CASCADE);
		CREATE TABLE bookmarks (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL, url TEXT NOT NULL,
			folder_id INTEGER NOT NULL, FOREIGN KEY (folder_id) REFERENCES folders(id) ON DELETE CASCADE);
		INSERT INTO folders (name) VALUES ('first'), ('second');
		INSERT INTO bookmarks (name, url, folder_id) VALUES ('x', 'http://x', 1), ('y', 'http://y', 1);
	`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s := NewService(openStore(t, path), newStubResolver(), nil, testLogger())

	_, err = s.RepairPositions(ctx)
	require.NoError(t, err)

	positions := positionsByName(assertInvariants(t, s))
	assert.Equal(t, map[string]int{"first": 0, "second": 1, "x": 0, "y": 1}, positions)

	third := mustFolder(t, s, "third", nil)
	assert.Equal(t, 2, third.Position)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []models.ChangeEvent
}

func (n *recordingNotifier) Publish(event models.ChangeEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) snapshot() []models.ChangeEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]models.ChangeEvent(nil), n.events...)
}

func TestNotifier_CommittedWritesOnly(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	s := NewService(openStore(t, ":memory:"), newStubResolver(), nil, testLogger(), WithNotifier(notifier))

	folder := mustFolder(t, s, "f", nil)
	require.NoError(t, s.RenameItem(ctx, models.ItemTypeFolder, folder.ID, "g"))

	// reads and rejected writes stay silent
	_, err := s.FetchTree(ctx)
	require.NoError(t, err)
	err = s.MoveItem(ctx, models.ItemTypeFolder, folder.ID, ptr(folder.ID))
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
	err = s.DeleteItem(ctx, models.ItemTypeBookmark, 404)
	require.ErrorIs(t, err, domain.ErrNotFound)

	tree := models.ChangeEvent{Kind: models.ChangeTree}
	assert.Equal(t, []models.ChangeEvent{tree, tree}, notifier.snapshot())
}

func TestNotifier_AsyncFaviconEvent(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	resolver := newStubResolver()
	resolver.set("http://icon.example", &models.Icon{ContentType: "image/png", Data: []byte("p")})
	s := NewService(openStore(t, ":memory:"), resolver, favicon.NewDispatcher(1, testLogger()), testLogger(), WithNotifier(notifier))

	folder := mustFolder(t, s, "f", nil)
	bm, err := s.CreateBookmark(ctx, &services.CreateBookmarkRequest{Name: "b", URL: "http://icon.example", FolderID: folder.ID})
	require.NoError(t, err)
	require.NoError(t, s.Close(ctx))

	assert.Contains(t, notifier.snapshot(), models.ChangeEvent{Kind: models.ChangeFavicon, BookmarkID: bm.ID})
}
