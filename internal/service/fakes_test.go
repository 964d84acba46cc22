package service

import (
	"context"
	"sync"

	"cryptosignals/internal/dao"
	"cryptosignals/internal/model/entity"
)

type fakeUserDao struct {
	mu    sync.Mutex
	users map[string]entity.User
	err   error
}

var _ dao.UserDao = (*fakeUserDao)(nil)

func newFakeUserDao() *fakeUserDao {
	return &fakeUserDao{users: make(map[string]entity.User)}
}

func (f *fakeUserDao) UserGetByEmail(_ context.Context, email string) (entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return entity.User{}, f.err
	}
	u, ok := f.users[email]
	if !ok {
		return entity.User{}, dao.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserDao) UserGetById(_ context.Context, userId int64) (entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Id == userId {
			return u, nil
		}
	}
	return entity.User{}, dao.ErrUserNotFound
}

func (f *fakeUserDao) UserCreate(_ context.Context, user *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.Email]; ok {
		return dao.ErrUserExist
	}
	f.users[user.Email] = *user
	return nil
}

func (f *fakeUserDao) UserUpdateRoleAndPlan(_ context.Context, email, role, plan string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return dao.ErrUserNotFound
	}
	u.Role, u.Plan = role, plan
	f.users[email] = u
	return nil
}

func (f *fakeUserDao) UserList(_ context.Context) ([]entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUserDao) UserDelete(_ context.Context, userId int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, u := range f.users {
		if u.Id == userId {
			delete(f.users, k)
		}
	}
	return nil
}

type sentMail struct {
	to, replyTo, subject, body string
}

type fakeSender struct {
	sent []sentMail
	err  error
}

func (f *fakeSender) Send(to, replyTo, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to, replyTo, subject, body})
	return nil
}
