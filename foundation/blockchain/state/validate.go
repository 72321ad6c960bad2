package state

// Validate walks the chain and returns the first integrity violation.
func (s *State) Validate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.chain.Validate()
	s.metrics.Validation(err)

	return err
}

// IsValid reports whether the chain passes validation.
func (s *State) IsValid() bool {
	return s.Validate() == nil
}

// Audit checks every block and returns all the violations found.
func (s *State) Audit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.chain.Audit()
}
