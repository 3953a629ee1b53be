package storage

import (
	"io"
	"os"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Save(name string, r io.Reader) (int64, error) {
	args := m.Called(name, r)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) Open(name string) (*os.File, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*os.File), args.Error(1)
}

func (m *MockStorage) Remove(name string) error {
	args := m.Called(name)
	return args.Error(0)
}
