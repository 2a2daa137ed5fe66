package services

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/textproto"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/yigit/unimag/internal/app/models"
	"github.com/yigit/unimag/internal/app/models/dto"
	"github.com/yigit/unimag/internal/db"
	"github.com/yigit/unimag/internal/pkg/apperrors"
	"github.com/yigit/unimag/internal/pkg/filestorage"
	"github.com/yigit/unimag/internal/pkg/helpers"
)

type fakeTx struct{ calls int }

func (f *fakeTx) WithTransaction(ctx context.Context, fn db.TransactionFn) error {
	f.calls++
	return fn(ctx, nil)
}

type loggedAction struct {
	UserID  *int64
	Action  string
	Details string
}

type fakeActivity struct {
	mu      sync.Mutex
	entries []loggedAction
}

func (f *fakeActivity) Log(_ context.Context, userID *int64, actionType, details string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, loggedAction{UserID: userID, Action: actionType, Details: details})
	return int64(len(f.entries))
}

func (f *fakeActivity) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.Action)
	}
	return out
}

type fakeUserStore struct {
	users  map[int64]*models.User
	nextID int64
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[int64]*models.User), nextID: 100}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) GetByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (s *fakeUserStore) EmailExists(_ context.Context, email string, excludeID int64) (bool, error) {
	for _, u := range s.users {
		if u.Email == email && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeUserStore) Create(_ context.Context, user *models.User) error {
	s.nextID++
	user.ID = s.nextID
	user.CreatedAt = time.Now()
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *fakeUserStore) Update(_ context.Context, user *models.User) error {
	existing, ok := s.users[user.ID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	cp := *user
	if cp.Password == "" {
		cp.Password = existing.Password
	}
	s.users[user.ID] = &cp
	return nil
}

func (s *fakeUserStore) UpdateProfile(_ context.Context, userID int64, firstName, lastName string) error {
	u, ok := s.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.FirstName, u.LastName = firstName, lastName
	return nil
}

func (s *fakeUserStore) UpdatePassword(_ context.Context, userID int64, hash string) error {
	u, ok := s.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.Password = hash
	return nil
}

func (s *fakeUserStore) UpdateLastLogin(_ context.Context, userID int64, at time.Time) error {
	u, ok := s.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.LastLogin = &at
	return nil
}

func (s *fakeUserStore) Delete(_ context.Context, id int64) error {
	if _, ok := s.users[id]; !ok {
		return apperrors.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *fakeUserStore) List(_ context.Context, filter models.UserFilter) ([]*models.User, dto.PaginationInfo, error) {
	out := make([]*models.User, 0)
	for _, u := range s.users {
		if filter.Role != models.RoleUnknown && u.Role != filter.Role {
			continue
		}
		out = append(out, u)
	}
	return out, helpers.NewPaginationInfo(int64(len(out)), filter.Page, filter.Size), nil
}

func (s *fakeUserStore) ListWithSubmissionCounts(_ context.Context, role models.Role, facultyID *int64) ([]*models.UserSummary, error) {
	out := make([]*models.UserSummary, 0)
	for _, u := range s.users {
		if u.Role != role {
			continue
		}
		if facultyID != nil && (u.FacultyID == nil || *u.FacultyID != *facultyID) {
			continue
		}
		out = append(out, &models.UserSummary{User: *u})
	}
	return out, nil
}

type fakeFacultyStore struct {
	faculties map[int64]*models.Faculty
}

func newFakeFacultyStore() *fakeFacultyStore {
	return &fakeFacultyStore{faculties: map[int64]*models.Faculty{
		1: {ID: 1, Name: "Engineering"},
		2: {ID: 2, Name: "Business"},
	}}
}

func (s *fakeFacultyStore) GetAll(_ context.Context) ([]*models.Faculty, error) {
	return []*models.Faculty{s.faculties[2], s.faculties[1]}, nil
}

func (s *fakeFacultyStore) GetByID(_ context.Context, id int64) (*models.Faculty, error) {
	f, ok := s.faculties[id]
	if !ok {
		return nil, apperrors.ErrFacultyNotFound
	}
	return f, nil
}

type fakeRoleStore struct {
	roles []models.RoleDefinition
	err   error
}

func (s *fakeRoleStore) GetAll(_ context.Context) ([]models.RoleDefinition, error) {
	return s.roles, s.err
}

type fakeSubmissionStore struct {
	subs      map[int64]*models.Submission
	nextID    int64
	createErr error
	lastList  models.SubmissionFilter
}

func newFakeSubmissionStore(subs ...*models.Submission) *fakeSubmissionStore {
	s := &fakeSubmissionStore{subs: make(map[int64]*models.Submission), nextID: 500}
	for _, sub := range subs {
		s.subs[sub.ID] = sub
	}
	return s
}

func (s *fakeSubmissionStore) Create(_ context.Context, sub *models.Submission) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.nextID++
	sub.ID = s.nextID
	sub.SubmittedAt = time.Now()
	cp := *sub
	s.subs[sub.ID] = &cp
	return nil
}

func (s *fakeSubmissionStore) GetByID(_ context.Context, id int64) (*models.Submission, error) {
	sub, ok := s.subs[id]
	if !ok {
		return nil, apperrors.ErrSubmissionNotFound
	}
	cp := *sub
	return &cp, nil
}

func (s *fakeSubmissionStore) List(_ context.Context, filter models.SubmissionFilter) ([]*models.Submission, dto.PaginationInfo, error) {
	s.lastList = filter
	ids := make(map[int64]bool, len(filter.IDs))
	for _, id := range filter.IDs {
		ids[id] = true
	}

	out := make([]*models.Submission, 0)
	for _, sub := range s.subs {
		if filter.SelectedOnly && sub.Status != models.StatusSelected {
			continue
		}
		if filter.UserID != nil && sub.UserID != *filter.UserID {
			continue
		}
		if filter.FacultyID != nil && sub.FacultyID != *filter.FacultyID {
			continue
		}
		if len(ids) > 0 && !ids[sub.ID] {
			continue
		}
		out = append(out, sub)
	}
	return out, helpers.NewPaginationInfo(int64(len(out)), filter.Page, filter.Size), nil
}

func (s *fakeSubmissionStore) UpdateStatus(_ context.Context, id int64, status models.SubmissionStatus, at time.Time) error {
	sub, ok := s.subs[id]
	if !ok {
		return apperrors.ErrSubmissionNotFound
	}
	sub.Status = status
	sub.Selected = status == models.StatusSelected
	sub.LastUpdated = &at
	return nil
}

type fakeCommentStore struct {
	comments []*models.Comment
}

func (s *fakeCommentStore) Create(_ context.Context, c *models.Comment) error {
	c.ID = int64(len(s.comments) + 1)
	c.CommentedAt = time.Now()
	s.comments = append(s.comments, c)
	return nil
}

func (s *fakeCommentStore) ListBySubmission(_ context.Context, submissionID int64) ([]*models.Comment, error) {
	out := make([]*models.Comment, 0)
	for _, c := range s.comments {
		if c.SubmissionID == submissionID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeCalendar struct {
	settings models.AcademicSettings
}

func (c fakeCalendar) AcademicSettings(context.Context) (models.AcademicSettings, error) {
	return c.settings, nil
}

type fakeNotifier struct {
	comments  []string
	selection []int64
}

func (n *fakeNotifier) CommentAdded(_ context.Context, sub *models.Submission, commenter, text string) {
	n.comments = append(n.comments, commenter+": "+text)
}

func (n *fakeNotifier) SubmissionSelected(_ context.Context, sub *models.Submission) {
	n.selection = append(n.selection, sub.ID)
}

type fakeStorage struct {
	files         map[string]string
	deleted       []string
	deletedOwners []int64
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{files: make(map[string]string)}
}

func (s *fakeStorage) SaveUpload(ownerID int64, fh *multipart.FileHeader) (*filestorage.StoredFile, error) {
	if err := filestorage.ValidateUpload(fh, 0); err != nil {
		return nil, err
	}
	fileType := filestorage.FileTypeFromExt(fh.Filename)
	path := "user_" + strconv.FormatInt(ownerID, 10) + "/file-1-1." + fileType
	s.files[path] = "content"
	return &filestorage.StoredFile{Path: path, FileType: fileType, Size: fh.Size, OriginalName: fh.Filename}, nil
}

func (s *fakeStorage) Open(relPath string) (filestorage.File, error) {
	content, ok := s.files[relPath]
	if !ok {
		return nil, apperrors.ErrFileNotFound
	}
	return &memFile{Reader: bytes.NewReader([]byte(content))}, nil
}

func (s *fakeStorage) Delete(relPath string) error {
	delete(s.files, relPath)
	s.deleted = append(s.deleted, relPath)
	return nil
}

func (s *fakeStorage) DeleteOwner(ownerID int64) error {
	prefix := "user_" + strconv.FormatInt(ownerID, 10) + "/"
	for path := range s.files {
		if strings.HasPrefix(path, prefix) {
			delete(s.files, path)
		}
	}
	s.deletedOwners = append(s.deletedOwners, ownerID)
	return nil
}

func (s *fakeStorage) FullPath(relPath string) (string, error) {
	return "/tmp/uploads/" + strings.TrimPrefix(relPath, "uploads/"), nil
}

type memFile struct {
	*bytes.Reader
}

func (f *memFile) Close() error       { return nil }
func (f *memFile) Size() int64        { return f.Reader.Size() }
func (f *memFile) ModTime() time.Time { return time.Time{} }

func uploadHeader(filename, contentType string, size int64) *multipart.FileHeader {
	return &multipart.FileHeader{
		Filename: filename,
		Size:     size,
		Header:   textproto.MIMEHeader{"Content-Type": {contentType}},
	}
}

type fakeSettingsStore struct {
	academic *models.AcademicSettings
	docs     map[models.SettingsKind]models.SettingsDocument
	upserts  int
}

func newFakeSettingsStore() *fakeSettingsStore {
	return &fakeSettingsStore{docs: make(map[models.SettingsKind]models.SettingsDocument)}
}

func (s *fakeSettingsStore) GetAcademic(context.Context) (*models.AcademicSettings, error) {
	if s.academic == nil {
		return nil, apperrors.ErrResourceNotFound
	}
	cp := *s.academic
	return &cp, nil
}

func (s *fakeSettingsStore) UpsertAcademic(_ context.Context, settings models.AcademicSettings) error {
	s.upserts++
	s.academic = &settings
	return nil
}

func (s *fakeSettingsStore) GetUserSettings(_ context.Context, _ int64, kind models.SettingsKind) (models.SettingsDocument, error) {
	return s.docs[kind], nil
}

func (s *fakeSettingsStore) UpsertUserSettings(_ context.Context, _ int64, kind models.SettingsKind, doc models.SettingsDocument) error {
	s.upserts++
	s.docs[kind] = doc
	return nil
}
