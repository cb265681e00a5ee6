package testrun

// SetStatus returns an UpdateSetter that sets the test run's status.
func SetStatus(status Status) UpdateSetter {
	return func(tr *TestRun) error {
		if !status.IsValid() {
			return ErrInvalidStatus
		}
		tr.Status = status
		return nil
	}
}

// SetNotes returns an UpdateSetter that sets the test run's notes.
func SetNotes(notes string) UpdateSetter {
	return func(tr *TestRun) error {
		tr.Notes = notes
		return nil
	}
}

// SetScriptPath returns an UpdateSetter that records where the run's script was saved.
func SetScriptPath(path string) UpdateSetter {
	return func(tr *TestRun) error {
		tr.ScriptPath = path
		return nil
	}
}

// SetReportPath returns an UpdateSetter that records where the run's report was saved.
func SetReportPath(path string) UpdateSetter {
	return func(tr *TestRun) error {
		tr.ReportPath = path
		return nil
	}
}
