package server

import (
	"errors"
	"testing"

	ps "github.com/mitchellh/go-ps"
	"github.com/stretchr/testify/require"
)

type fakeProcess struct {
	pid  int
	name string
}

func (p fakeProcess) Pid() int           { return p.pid }
func (p fakeProcess) PPid() int          { return 1 }
func (p fakeProcess) Executable() string { return p.name }

// TestOtherInstances checks that only foreign server processes are reported.
func TestOtherInstances(t *testing.T) {
	t.Parallel()

	list := func() ([]ps.Process, error) {
		return []ps.Process{
			fakeProcess{pid: 10, name: "pose-timer-server"},
			fakeProcess{pid: 11, name: "pose-timer"},
			fakeProcess{pid: 12, name: "pose-timer-server.exe"},
			fakeProcess{pid: 13, name: "bash"},
		}, nil
	}

	pids, err := otherInstances(list, 10)
	require.NoError(t, err)
	require.Equal(t, []int{12}, pids)

	boom := errors.New("boom")
	_, err = otherInstances(func() ([]ps.Process, error) { return nil, boom }, 10)
	require.ErrorIs(t, err, boom)
}
