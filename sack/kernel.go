package sack

import "github.com/rpmpkg/core/pool"

// SetRunningKernelResolver injects the function used to resolve the
// currently-booted kernel solvable (spec §4.1). A non-"/" RootDir disables
// the resolver, matching the spec's "a non-/ rootdir disables the running
// kernel resolver".
func (s *Sack) SetRunningKernelResolver(fn func(*Sack) (pool.Id, error)) {
	s.runningKernelResolver = fn
	s.runningKernelMemo = nil
	s.runningKernelErr = nil
}

// RunningKernel resolves and memoises the booted kernel's solvable id.
func (s *Sack) RunningKernel() (pool.Id, error) {
	if s.config.RootDir != "" && s.config.RootDir != "/" {
		return pool.NoId, nil
	}
	if s.runningKernelMemo != nil {
		return *s.runningKernelMemo, s.runningKernelErr
	}
	if s.runningKernelResolver == nil {
		return pool.NoId, nil
	}

	id, err := s.runningKernelResolver(s)
	s.runningKernelMemo = &id
	s.runningKernelErr = err
	return id, err
}
