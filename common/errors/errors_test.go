package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	errTestOne = New("errors_test", 1, "errors_test: first")
	errTestTwo = New("errors_test", 2, "errors_test: second")
)

func TestCode(t *testing.T) {
	require := require.New(t)

	module, code := Code(nil)
	require.Equal("", module)
	require.EqualValues(CodeNoError, code)

	module, code = Code(errTestTwo)
	require.Equal("errors_test", module)
	require.EqualValues(2, code)

	wrapped := fmt.Errorf("outer: %w", WithContext(errTestOne, "some detail"))
	module, code = Code(wrapped)
	require.Equal("errors_test", module)
	require.EqualValues(1, code)
	require.True(Is(wrapped, errTestOne))
	require.Equal("some detail", Context(wrapped))

	module, code = Code(fmt.Errorf("plain"))
	require.Equal(UnknownModule, module)
	require.EqualValues(1, code)
}

func TestFromCode(t *testing.T) {
	require := require.New(t)

	err := FromCode("errors_test", 1, errTestOne.Error())
	require.Equal(errTestOne, err)

	err = FromCode("errors_test", 2, "errors_test: second: extra")
	require.True(Is(err, errTestTwo))
	require.Equal("extra", Context(err))

	err = FromCode("errors_test", 99, "never registered")
	require.Equal("never registered", err.Error())
	module, code := Code(err)
	require.Equal("errors_test", module)
	require.EqualValues(99, code)
}

func TestDuplicateRegistration(t *testing.T) {
	require.Panics(t, func() {
		_ = New("errors_test", 1, "duplicate")
	})
	require.Panics(t, func() {
		_ = New("errors_test", CodeNoError, "reserved")
	})
}

func TestWithContextEmpty(t *testing.T) {
	require.Equal(t, errTestOne, WithContext(errTestOne, ""))
	require.Equal(t, "errors_test: first: n=3", WithContextf(errTestOne, "n=%d", 3).Error())
}
