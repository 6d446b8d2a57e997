package contentmanagement

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"harrys-team/backend/internal/datastore"
	"harrys-team/backend/internal/objectstore"
)

// fakeStore keeps rows in maps and mimics the SQL semantics the handlers
// rely on: COALESCE on empty URLs and ErrNotFound for missing ids.
type fakeStore struct {
	heroes    map[int]*datastore.HeroImage
	members   map[int]*datastore.TeamMember
	messages  map[string]*datastore.ContactMessage
	settings  *datastore.SiteSettings
	nextID    int
	createErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		heroes:   map[int]*datastore.HeroImage{},
		members:  map[int]*datastore.TeamMember{},
		messages: map[string]*datastore.ContactMessage{},
		nextID:   1,
	}
}

func missing(entity string, id interface{}) error {
	return fmt.Errorf("%s with ID %v: %w", entity, id, datastore.ErrNotFound)
}

func (f *fakeStore) ListHeroImages(_ context.Context, activeOnly bool) ([]*datastore.HeroImage, error) {
	out := []*datastore.HeroImage{}
	for _, h := range f.heroes {
		if !activeOnly || h.IsActive {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f *fakeStore) GetHeroImage(_ context.Context, id int) (*datastore.HeroImage, error) {
	h, ok := f.heroes[id]
	if !ok {
		return nil, missing("hero image", id)
	}
	return h, nil
}

func (f *fakeStore) CreateHeroImage(_ context.Context, in datastore.HeroImageInput) (*datastore.HeroImage, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	h := &datastore.HeroImage{
		ID: f.nextID, Title: in.Title, ImageURL: in.ImageURL, AltText: in.AltText, Caption: in.Caption,
		Position: in.Position, IsActive: in.IsActive, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	f.nextID++
	f.heroes[h.ID] = h
	return h, nil
}

func (f *fakeStore) UpdateHeroImage(_ context.Context, id int, in datastore.HeroImageInput) (*datastore.HeroImage, error) {
	h, ok := f.heroes[id]
	if !ok {
		return nil, missing("hero image", id)
	}
	h.Title, h.AltText, h.Caption, h.Position, h.IsActive = in.Title, in.AltText, in.Caption, in.Position, in.IsActive
	if in.ImageURL != "" {
		h.ImageURL = in.ImageURL
	}
	h.UpdatedAt = time.Now()
	return h, nil
}

func (f *fakeStore) DeleteHeroImage(_ context.Context, id int) (string, error) {
	h, ok := f.heroes[id]
	if !ok {
		return "", missing("hero image", id)
	}
	delete(f.heroes, id)
	return h.ImageURL, nil
}

func (f *fakeStore) ListTeamMembers(_ context.Context, activeOnly bool) ([]*datastore.TeamMember, error) {
	out := []*datastore.TeamMember{}
	for _, m := range f.members {
		if !activeOnly || m.IsActive {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeStore) GetTeamMember(_ context.Context, id int) (*datastore.TeamMember, error) {
	m, ok := f.members[id]
	if !ok {
		return nil, missing("team member", id)
	}
	return m, nil
}

func (f *fakeStore) CreateTeamMember(_ context.Context, in datastore.TeamMemberInput) (*datastore.TeamMember, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	m := &datastore.TeamMember{
		ID: f.nextID, Name: in.Name, Position: in.Position, Bio: in.Bio, Email: in.Email, Phone: in.Phone,
		SocialLinks: in.SocialLinks, IsActive: in.IsActive,
	}
	if in.PhotoURL != "" {
		url := in.PhotoURL
		m.PhotoURL = &url
	}
	f.nextID++
	f.members[m.ID] = m
	return m, nil
}

func (f *fakeStore) UpdateTeamMember(_ context.Context, id int, in datastore.TeamMemberInput) (*datastore.TeamMember, error) {
	m, ok := f.members[id]
	if !ok {
		return nil, missing("team member", id)
	}
	m.Name, m.Position, m.Bio, m.Email, m.Phone = in.Name, in.Position, in.Bio, in.Email, in.Phone
	m.SocialLinks, m.IsActive = in.SocialLinks, in.IsActive
	if in.PhotoURL != "" {
		url := in.PhotoURL
		m.PhotoURL = &url
	}
	return m, nil
}

func (f *fakeStore) DeleteTeamMember(_ context.Context, id int) (string, error) {
	m, ok := f.members[id]
	if !ok {
		return "", missing("team member", id)
	}
	delete(f.members, id)
	if m.PhotoURL == nil {
		return "", nil
	}
	return *m.PhotoURL, nil
}

func (f *fakeStore) ListContactMessages(_ context.Context, unreadOnly bool) ([]*datastore.ContactMessage, error) {
	out := []*datastore.ContactMessage{}
	for _, m := range f.messages {
		if !unreadOnly || !m.Read {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) MarkContactMessageRead(_ context.Context, id string) (*datastore.ContactMessage, error) {
	m, ok := f.messages[id]
	if !ok {
		return nil, missing("contact message", id)
	}
	m.Read = true
	return m, nil
}

func (f *fakeStore) GetSiteSettings(context.Context) (*datastore.SiteSettings, error) {
	if f.settings == nil {
		return nil, missing("site settings", "-")
	}
	return f.settings, nil
}

func (f *fakeStore) UpdateSiteSettings(_ context.Context, p datastore.SiteSettingsPatch) (*datastore.SiteSettings, error) {
	if f.settings == nil {
		f.settings = &datastore.SiteSettings{ID: "settings"}
	}
	set := func(dst **string, v *string) {
		if v != nil {
			*dst = v
		}
	}
	set(&f.settings.SiteTitle, p.SiteTitle)
	set(&f.settings.SiteDescription, p.SiteDescription)
	set(&f.settings.ContactEmail, p.ContactEmail)
	set(&f.settings.ContactPhone, p.ContactPhone)
	set(&f.settings.Address, p.Address)
	return f.settings, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type fixture struct {
	router *gin.Engine
	store  *fakeStore
	root   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := newFakeStore()
	root := t.TempDir()
	h := NewHandler(store, objectstore.NewLocalStore(root, zap.NewNop()), zap.NewNop(), true)
	r := gin.New()
	h.Register(r.Group("/api"))
	return &fixture{router: r, store: store, root: root}
}

func (fx *fixture) do(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	fx.router.ServeHTTP(w, req)
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return w, env
}

// uploadedFiles lists every file under the upload root.
func (fx *fixture) uploadedFiles(t *testing.T) []string {
	t.Helper()
	var files []string
	err := filepath.Walk(fx.root, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			files = append(files, path)
		}
		return err
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	return files
}

func testJPEG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8)), nil); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

type upload struct {
	field, name string
	data        []byte
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, file *upload) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if file != nil {
		part, err := mw.CreateFormFile(file.field, file.name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		part.Write(file.data)
	}
	mw.Close()
	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestCreateHeroImage(t *testing.T) {
	fx := newFixture(t)
	req := multipartRequest(t, http.MethodPost, "/api/hero-images",
		map[string]string{"altText": "Sunset", "title": "Evening", "position": "2", "isActive": "true"},
		&upload{"image", "sunset beach.jpg", testJPEG(t)})

	w, env := fx.do(t, req)
	if w.Code != http.StatusCreated || !env.Success {
		t.Fatalf("expected 201, got %d %s", w.Code, w.Body.String())
	}
	var img datastore.HeroImage
	if err := json.Unmarshal(env.Data, &img); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if img.AltText != "Sunset" || img.Position != 2 || !img.IsActive || img.Title == nil || *img.Title != "Evening" {
		t.Fatalf("unexpected hero image %+v", img)
	}
	if img.ImageURL == "" || filepath.Dir(img.ImageURL) != "/images" {
		t.Fatalf("unexpected image url %q", img.ImageURL)
	}
	if files := fx.uploadedFiles(t); len(files) != 1 {
		t.Fatalf("expected one stored file, got %v", files)
	}
}

func TestCreateHeroImageValidation(t *testing.T) {
	fx := newFixture(t)
	cases := []struct {
		name    string
		fields  map[string]string
		file    *upload
		message string
	}{
		{"missing alt text", map[string]string{"title": "x"}, &upload{"image", "a.jpg", testJPEG(t)}, "Alt text is required"},
		{"missing file", map[string]string{"altText": "Sunset"}, nil, "Image file is required"},
		{"not an image", map[string]string{"altText": "Sunset"}, &upload{"image", "a.jpg", []byte("plain text")}, "Invalid file type. Only image files are allowed."},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			w, env := fx.do(t, multipartRequest(t, http.MethodPost, "/api/hero-images", tt.fields, tt.file))
			if w.Code != http.StatusBadRequest || env.Success || env.Message != tt.message {
				t.Fatalf("expected 400 %q, got %d %s", tt.message, w.Code, w.Body.String())
			}
		})
	}
	if files := fx.uploadedFiles(t); len(files) != 0 {
		t.Fatalf("rejected requests left files behind: %v", files)
	}
	if len(fx.store.heroes) != 0 {
		t.Fatalf("rejected requests created rows")
	}
}

func TestCreateHeroImageRemovesFileOnStoreFailure(t *testing.T) {
	fx := newFixture(t)
	fx.store.createErr = errors.New("insert failed: connection reset")

	req := multipartRequest(t, http.MethodPost, "/api/hero-images",
		map[string]string{"altText": "Sunset"}, &upload{"image", "a.jpg", testJPEG(t)})
	w, env := fx.do(t, req)
	if w.Code != http.StatusInternalServerError || env.Message != "insert failed: connection reset" {
		t.Fatalf("expected 500 with raw message, got %d %s", w.Code, w.Body.String())
	}
	if files := fx.uploadedFiles(t); len(files) != 0 {
		t.Fatalf("orphaned upload left behind: %v", files)
	}
}

func TestUpdateHeroImageKeepsImageWithoutFile(t *testing.T) {
	fx := newFixture(t)
	fx.store.heroes[5] = &datastore.HeroImage{ID: 5, ImageURL: "/images/1-old.jpg", AltText: "Old"}

	w, env := fx.do(t, multipartRequest(t, http.MethodPut, "/api/hero-images/5",
		map[string]string{"altText": "New", "isActive": "false"}, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", w.Code, w.Body.String())
	}
	var img datastore.HeroImage
	json.Unmarshal(env.Data, &img)
	if img.ImageURL != "/images/1-old.jpg" || img.AltText != "New" {
		t.Fatalf("unexpected hero image %+v", img)
	}

	w, env = fx.do(t, multipartRequest(t, http.MethodPut, "/api/hero-images/5",
		map[string]string{"altText": "Newer"}, &upload{"image", "fresh.jpg", testJPEG(t)}))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	json.Unmarshal(env.Data, &img)
	if img.ImageURL == "/images/1-old.jpg" {
		t.Fatalf("image url should change when a file is uploaded")
	}
}

func TestUpdateMissingHeroImage(t *testing.T) {
	fx := newFixture(t)
	w, env := fx.do(t, multipartRequest(t, http.MethodPut, "/api/hero-images/99",
		map[string]string{"altText": "x"}, &upload{"image", "a.jpg", testJPEG(t)}))
	if w.Code != http.StatusNotFound || env.Message != "Hero image not found" {
		t.Fatalf("expected 404, got %d %s", w.Code, w.Body.String())
	}
	if files := fx.uploadedFiles(t); len(files) != 0 {
		t.Fatalf("upload for missing row was kept: %v", files)
	}
}

func TestDeleteHeroImage(t *testing.T) {
	fx := newFixture(t)
	req := multipartRequest(t, http.MethodPost, "/api/hero-images",
		map[string]string{"altText": "Sunset"}, &upload{"image", "a.jpg", testJPEG(t)})
	_, env := fx.do(t, req)
	var img datastore.HeroImage
	json.Unmarshal(env.Data, &img)

	w, env := fx.do(t, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/hero-images/%d", img.ID), nil))
	if w.Code != http.StatusOK || env.Message != "Hero image deleted successfully" {
		t.Fatalf("unexpected delete response %d %s", w.Code, w.Body.String())
	}
	if files := fx.uploadedFiles(t); len(files) != 0 {
		t.Fatalf("file not removed with its row: %v", files)
	}

	w, env = fx.do(t, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/hero-images/%d", img.ID), nil))
	if w.Code != http.StatusNotFound || env.Message != "Hero image not found" {
		t.Fatalf("expected 404 on second delete, got %d", w.Code)
	}

	w, env = fx.do(t, httptest.NewRequest(http.MethodDelete, "/api/hero-images/abc", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-integer id, got %d", w.Code)
	}
}

func TestListHeroImagesIncludesInactive(t *testing.T) {
	fx := newFixture(t)
	fx.store.heroes[1] = &datastore.HeroImage{ID: 1, Position: 2, IsActive: true}
	fx.store.heroes[2] = &datastore.HeroImage{ID: 2, Position: 1, IsActive: false}

	_, env := fx.do(t, httptest.NewRequest(http.MethodGet, "/api/hero-images", nil))
	var images []datastore.HeroImage
	json.Unmarshal(env.Data, &images)
	if len(images) != 2 || images[0].ID != 2 {
		t.Fatalf("admin list should show all images by position, got %+v", images)
	}
}

func TestTeamMemberLifecycle(t *testing.T) {
	fx := newFixture(t)

	w, env := fx.do(t, multipartRequest(t, http.MethodPost, "/api/team-members",
		map[string]string{"name": "Harry", "position": "Founder"}, nil))
	if w.Code != http.StatusBadRequest || env.Message != "Name, position, and bio are required" {
		t.Fatalf("expected 400 for missing bio, got %d %s", w.Code, w.Body.String())
	}

	w, env = fx.do(t, multipartRequest(t, http.MethodPost, "/api/team-members",
		map[string]string{"name": "Harry", "position": "Founder", "bio": "Started it all.", "twitter": "@harry", "isActive": "true"},
		&upload{"photo", "harry.jpg", testJPEG(t)}))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", w.Code, w.Body.String())
	}
	var m datastore.TeamMember
	json.Unmarshal(env.Data, &m)
	if m.PhotoURL == nil || filepath.Dir(*m.PhotoURL) != "/images/team" || m.SocialLinks.Twitter != "@harry" || m.Email != nil {
		t.Fatalf("unexpected member %+v", m)
	}

	w, env = fx.do(t, multipartRequest(t, http.MethodPut, fmt.Sprintf("/api/team-members/%d", m.ID),
		map[string]string{"name": "Harry P", "position": "Founder", "bio": "Still here."}, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var updated datastore.TeamMember
	json.Unmarshal(env.Data, &updated)
	if updated.PhotoURL == nil || *updated.PhotoURL != *m.PhotoURL || updated.IsActive {
		t.Fatalf("photo should be kept and isActive cleared, got %+v", updated)
	}

	w, _ = fx.do(t, httptest.NewRequest(http.MethodGet, "/api/team-members/4242", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	w, env = fx.do(t, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/team-members/%d", m.ID), nil))
	if w.Code != http.StatusOK || env.Message != "Team member deleted successfully" {
		t.Fatalf("unexpected delete response %d %s", w.Code, w.Body.String())
	}
	if files := fx.uploadedFiles(t); len(files) != 0 {
		t.Fatalf("photo not removed: %v", files)
	}
}

func TestUpdateMissingTeamMember(t *testing.T) {
	fx := newFixture(t)
	w, env := fx.do(t, multipartRequest(t, http.MethodPut, "/api/team-members/777",
		map[string]string{"name": "Ghost", "position": "Nobody", "bio": "Not here."},
		&upload{"photo", "ghost.jpg", testJPEG(t)}))
	if w.Code != http.StatusNotFound || env.Message != "Team member not found" {
		t.Fatalf("expected 404, got %d %s", w.Code, w.Body.String())
	}
	if len(fx.store.members) != 0 {
		t.Fatalf("update of a missing member created a row: %+v", fx.store.members)
	}
	if files := fx.uploadedFiles(t); len(files) != 0 {
		t.Fatalf("upload for missing member was kept: %v", files)
	}
}

func TestIDOutsideColumnRange(t *testing.T) {
	fx := newFixture(t)
	for target, msg := range map[string]string{
		"/api/hero-images/99999999999":  "Invalid hero image ID format",
		"/api/team-members/2147483648":  "Invalid team member ID format",
		"/api/hero-images/-99999999999": "Invalid hero image ID format",
	} {
		w, env := fx.do(t, httptest.NewRequest(http.MethodGet, target, nil))
		if w.Code != http.StatusBadRequest || env.Message != msg {
			t.Fatalf("%s: expected 400, got %d %s", target, w.Code, w.Body.String())
		}
	}
}

func TestTeamPhotoSizeLimit(t *testing.T) {
	fx := newFixture(t)
	big := append(testJPEG(t), make([]byte, 2<<20)...)
	w, env := fx.do(t, multipartRequest(t, http.MethodPost, "/api/team-members",
		map[string]string{"name": "Ron", "position": "Coach", "bio": "Keeper."},
		&upload{"photo", "ron.jpg", big}))
	if w.Code != http.StatusBadRequest || env.Message != "File size exceeds 2MB limit." {
		t.Fatalf("expected 400 size error, got %d %s", w.Code, w.Body.String())
	}
}

func TestContactMessagesAndSettings(t *testing.T) {
	fx := newFixture(t)
	id := "0b7f4e0c-9a55-4a8e-9d36-2f1c3b0e8a11"
	fx.store.messages[id] = &datastore.ContactMessage{ID: id, Name: "Luna"}
	fx.store.messages["other"] = &datastore.ContactMessage{ID: "other", Read: true}

	_, env := fx.do(t, httptest.NewRequest(http.MethodGet, "/api/contact-messages?unread=true", nil))
	var msgs []datastore.ContactMessage
	json.Unmarshal(env.Data, &msgs)
	if len(msgs) != 1 || msgs[0].ID != id {
		t.Fatalf("expected only the unread message, got %+v", msgs)
	}

	w, _ := fx.do(t, httptest.NewRequest(http.MethodPut, "/api/contact-messages/"+id+"/read", nil))
	if w.Code != http.StatusOK || !fx.store.messages[id].Read {
		t.Fatalf("expected message marked read, got %d", w.Code)
	}
	w, _ = fx.do(t, httptest.NewRequest(http.MethodPut, "/api/contact-messages/not-a-uuid/read", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", w.Code)
	}
	w, _ = fx.do(t, httptest.NewRequest(http.MethodPut, "/api/contact-messages/11111111-1111-4111-8111-111111111111/read", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", w.Code)
	}

	w, _ = fx.do(t, httptest.NewRequest(http.MethodGet, "/api/site-settings", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before settings exist, got %d", w.Code)
	}

	put := func(body string) envelope {
		req := httptest.NewRequest(http.MethodPut, "/api/site-settings", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w, env := fx.do(t, req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d %s", w.Code, w.Body.String())
		}
		return env
	}
	put(`{"siteTitle":"Harry's Team","contactEmail":"hi@harrysteam.org"}`)
	env = put(`{"address":"1 Privet Drive"}`)
	var st datastore.SiteSettings
	json.Unmarshal(env.Data, &st)
	if st.SiteTitle == nil || *st.SiteTitle != "Harry's Team" || st.Address == nil || *st.Address != "1 Privet Drive" {
		t.Fatalf("partial update lost fields: %+v", st)
	}
}
