package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/JoeShih716/go-bank-core/internal/app/bank/domain"
	"github.com/JoeShih716/go-bank-core/internal/app/bank/usecase"
	"github.com/JoeShih716/go-bank-core/pkg/jsonstore"
)

// UserStore 使用者資料。核心轉帳路徑只讀；註冊與管理操作寫入。
type UserStore struct {
	mu      sync.RWMutex
	users   map[string]*domain.User // UserID -> User
	byEmail map[string]*domain.User
	order   []string
	store   *jsonstore.Collection[domain.User]
}

// NewUserStore 從集合檔載入使用者。store 為 nil 時純記憶體運作。
func NewUserStore(store *jsonstore.Collection[domain.User]) (*UserStore, error) {
	us := &UserStore{
		users:   make(map[string]*domain.User),
		byEmail: make(map[string]*domain.User),
		store:   store,
	}
	if store != nil {
		items, err := store.Load()
		if err != nil {
			return nil, err
		}
		for i := range items {
			u := items[i]
			us.users[u.UserID] = &u
			us.byEmail[u.Email] = &u
			us.order = append(us.order, u.UserID)
		}
	}
	return us, nil
}

// Get 以 ID 取得使用者快照
func (s *UserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// GetByEmail 以 Email 取得使用者快照
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// List 列出所有使用者 (依建立順序)
func (s *UserStore) List(ctx context.Context) ([]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.User, 0, len(s.order))
	for _, id := range s.order {
		cp := *s.users[id]
		out = append(out, &cp)
	}
	return out, nil
}

// Create 建立使用者；Email 重複回傳 ErrEmailTaken
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[user.Email]; ok {
		return domain.ErrEmailTaken
	}

	cp := *user
	if err := s.flushLocked(&cp); err != nil {
		return err
	}
	s.users[cp.UserID] = &cp
	s.byEmail[cp.Email] = &cp
	s.order = append(s.order, cp.UserID)
	return nil
}

// Update 覆寫既有使用者
func (s *UserStore) Update(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.users[user.UserID]
	if !ok {
		return domain.ErrUserNotFound
	}

	cp := *user
	if err := s.flushLocked(&cp); err != nil {
		return err
	}
	if prev.Email != cp.Email {
		delete(s.byEmail, prev.Email)
	}
	s.users[cp.UserID] = &cp
	s.byEmail[cp.Email] = &cp
	return nil
}

// flushLocked 以 override 取代對應使用者後整檔寫回。呼叫端需持有寫鎖。
func (s *UserStore) flushLocked(override *domain.User) error {
	if s.store == nil {
		return nil
	}

	snapshot := make([]domain.User, 0, len(s.order)+1)
	seen := false
	for _, id := range s.order {
		if id == override.UserID {
			snapshot = append(snapshot, *override)
			seen = true
			continue
		}
		snapshot = append(snapshot, *s.users[id])
	}
	if !seen {
		snapshot = append(snapshot, *override)
	}

	if err := s.store.Save(snapshot); err != nil {
		return fmt.Errorf("%w: flushing users: %v", domain.ErrStorageFailure, err)
	}
	return nil
}

var _ usecase.UserStore = (*UserStore)(nil)
