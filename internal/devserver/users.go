package devserver

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/userdesk/internal/client/models"
	"github.com/dmitrijs2005/userdesk/internal/common"
)

// DefaultPassword is the password every seeded account accepts.
const DefaultPassword = "cityslicka"

type account struct {
	user models.User
	hash []byte
}

// UserStore is the in-memory user table. Order is by numeric id.
type UserStore struct {
	mu      sync.RWMutex
	byID    map[models.ID]*account
	byEmail map[string]models.ID
}

var seedUsers = []models.User{
	{ID: "1", Email: "george.bluth@reqres.in", FirstName: "George", LastName: "Bluth"},
	{ID: "2", Email: "janet.weaver@reqres.in", FirstName: "Janet", LastName: "Weaver"},
	{ID: "3", Email: "emma.wong@reqres.in", FirstName: "Emma", LastName: "Wong"},
	{ID: "4", Email: "eve.holt@reqres.in", FirstName: "Eve", LastName: "Holt"},
	{ID: "5", Email: "charles.morris@reqres.in", FirstName: "Charles", LastName: "Morris"},
	{ID: "6", Email: "tracey.ramos@reqres.in", FirstName: "Tracey", LastName: "Ramos"},
	{ID: "7", Email: "michael.lawson@reqres.in", FirstName: "Michael", LastName: "Lawson"},
	{ID: "8", Email: "lindsay.ferguson@reqres.in", FirstName: "Lindsay", LastName: "Ferguson"},
	{ID: "9", Email: "tobias.funke@reqres.in", FirstName: "Tobias", LastName: "Funke"},
	{ID: "10", Email: "byron.fields@reqres.in", FirstName: "Byron", LastName: "Fields"},
	{ID: "11", Email: "george.edwards@reqres.in", FirstName: "George", LastName: "Edwards"},
	{ID: "12", Email: "rachel.howell@reqres.in", FirstName: "Rachel", LastName: "Howell"},
}

// NewUserStore seeds the twelve reqres users, all with password.
func NewUserStore(password string, cost int) (*UserStore, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}

	s := &UserStore{byID: make(map[models.ID]*account), byEmail: make(map[string]models.ID)}
	for _, u := range seedUsers {
		u.Avatar = fmt.Sprintf("https://reqres.in/img/faces/%s-image.jpg", u.ID)
		s.byID[u.ID] = &account{user: u, hash: hash}
		s.byEmail[u.Email] = u.ID
	}
	return s, nil
}

// Authenticate checks email and password against the table.
func (s *UserStore) Authenticate(email string, password []byte) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return models.User{}, common.ErrUserNotFound
	}
	acc := s.byID[id]
	if err := bcrypt.CompareHashAndPassword(acc.hash, password); err != nil {
		return models.User{}, common.ErrUserNotFound
	}
	return acc.user, nil
}

// Page returns page (1-based) of perPage users and the table size.
func (s *UserStore) Page(page, perPage int) ([]models.User, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]models.User, 0, len(s.byID))
	for _, a := range s.byID {
		all = append(all, a.user)
	}
	sort.Slice(all, func(i, j int) bool { return idLess(all[i].ID, all[j].ID) })

	start := (page - 1) * perPage
	if start >= len(all) {
		return []models.User{}, len(all)
	}
	end := min(start+perPage, len(all))
	return all[start:end], len(all)
}

func (s *UserStore) Get(id models.ID) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[id]
	if !ok {
		return models.User{}, common.ErrorNotFound
	}
	return a.user, nil
}

// Update overwrites the editable fields of id. Empty fields are kept.
func (s *UserStore) Update(id models.ID, u models.UserUpdate) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[id]
	if !ok {
		return models.User{}, common.ErrorNotFound
	}
	if u.Email != "" && u.Email != a.user.Email {
		delete(s.byEmail, a.user.Email)
		s.byEmail[u.Email] = id
		a.user.Email = u.Email
	}
	if u.FirstName != "" {
		a.user.FirstName = u.FirstName
	}
	if u.LastName != "" {
		a.user.LastName = u.LastName
	}
	if u.Avatar != "" {
		a.user.Avatar = u.Avatar
	}
	return a.user, nil
}

func (s *UserStore) Delete(id models.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	delete(s.byEmail, a.user.Email)
	delete(s.byID, id)
	return nil
}

func idLess(a, b models.ID) bool {
	x, errX := strconv.Atoi(string(a))
	y, errY := strconv.Atoi(string(b))
	if errX != nil || errY != nil {
		return a < b
	}
	return x < y
}
