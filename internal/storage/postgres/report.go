package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voltfall/tactics/internal/sim"
)

// ErrReportNotFound is returned when a report lookup yields no results.
var ErrReportNotFound = errors.New("encounter report not found")

// EncounterReport is the stored form of one finished skirmish run.
// Outcome is the lowercase label from combat.Outcome.String, so rows stay
// readable from plain SQL.
type EncounterReport struct {
	ID         int64
	ScenarioID string
	Seed       int64
	Policy     string
	Outcome    string
	Rounds     int
	Survivors  []string
	Casualties []string
	CombatLog  []string
	Duration   time.Duration
	CreatedAt  time.Time
}

// NewEncounterReport converts a finished run report into its storable form.
// Nil slices become empty ones; pgx encodes nil as SQL NULL and the array
// columns are NOT NULL.
//
// Precondition: rep must describe a terminated encounter.
func NewEncounterReport(rep *sim.Report) *EncounterReport {
	return &EncounterReport{
		ScenarioID: rep.ScenarioID,
		Seed:       rep.Seed,
		Policy:     rep.Policy,
		Outcome:    rep.Outcome.String(),
		Rounds:     rep.Rounds,
		Survivors:  nonNil(rep.Survivors),
		Casualties: nonNil(rep.Casualties),
		CombatLog:  nonNil(rep.Log),
		Duration:   rep.Duration,
	}
}

func nonNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}

// EncounterReportRepository provides encounter report persistence operations.
type EncounterReportRepository struct {
	db *pgxpool.Pool
}

// NewEncounterReportRepository creates a repository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewEncounterReportRepository(db *pgxpool.Pool) *EncounterReportRepository {
	return &EncounterReportRepository{db: db}
}

// Create inserts a new report and returns it with ID and timestamp set.
//
// Precondition: r.ScenarioID and r.Outcome must be non-empty.
// Postcondition: Returns the stored report with ID set, or a non-nil error.
func (r *EncounterReportRepository) Create(ctx context.Context, rep *EncounterReport) (*EncounterReport, error) {
	var out EncounterReport
	var durationMS int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO encounter_reports
			(scenario_id, seed, policy, outcome, rounds,
			 survivors, casualties, combat_log, duration_ms)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id, scenario_id, seed, policy, outcome, rounds,
		          survivors, casualties, combat_log, duration_ms, created_at`,
		rep.ScenarioID, rep.Seed, rep.Policy, rep.Outcome, rep.Rounds,
		rep.Survivors, rep.Casualties, rep.CombatLog, rep.Duration.Milliseconds(),
	).Scan(
		&out.ID, &out.ScenarioID, &out.Seed, &out.Policy, &out.Outcome, &out.Rounds,
		&out.Survivors, &out.Casualties, &out.CombatLog, &durationMS, &out.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting encounter report: %w", err)
	}
	out.Duration = time.Duration(durationMS) * time.Millisecond
	return &out, nil
}

// GetByID retrieves a report by its primary key.
//
// Precondition: id must be > 0.
// Postcondition: Returns the EncounterReport or ErrReportNotFound.
func (r *EncounterReportRepository) GetByID(ctx context.Context, id int64) (*EncounterReport, error) {
	var out EncounterReport
	var durationMS int64
	err := r.db.QueryRow(ctx, `
		SELECT id, scenario_id, seed, policy, outcome, rounds,
		       survivors, casualties, combat_log, duration_ms, created_at
		FROM encounter_reports WHERE id = $1`,
		id,
	).Scan(
		&out.ID, &out.ScenarioID, &out.Seed, &out.Policy, &out.Outcome, &out.Rounds,
		&out.Survivors, &out.Casualties, &out.CombatLog, &durationMS, &out.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("querying encounter report: %w", err)
	}
	out.Duration = time.Duration(durationMS) * time.Millisecond
	return &out, nil
}

// ListByScenario returns all reports for the given scenario, oldest first.
//
// Precondition: scenarioID must be non-empty.
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *EncounterReportRepository) ListByScenario(ctx context.Context, scenarioID string) ([]*EncounterReport, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, scenario_id, seed, policy, outcome, rounds,
		       survivors, casualties, combat_log, duration_ms, created_at
		FROM encounter_reports WHERE scenario_id = $1 ORDER BY created_at ASC, id ASC`,
		scenarioID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing encounter reports: %w", err)
	}
	defer rows.Close()
	return scanReports(rows)
}

// ListRecent returns the most recently stored reports, newest first.
//
// Precondition: limit must be > 0.
// Postcondition: Returns at most limit reports or a non-nil error.
func (r *EncounterReportRepository) ListRecent(ctx context.Context, limit int) ([]*EncounterReport, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, scenario_id, seed, policy, outcome, rounds,
		       survivors, casualties, combat_log, duration_ms, created_at
		FROM encounter_reports ORDER BY created_at DESC, id DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing recent encounter reports: %w", err)
	}
	defer rows.Close()
	return scanReports(rows)
}

// Delete removes a report by its primary key.
//
// Precondition: id must be > 0.
// Postcondition: Returns nil on success, ErrReportNotFound if no row matched.
func (r *EncounterReportRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM encounter_reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting encounter report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrReportNotFound
	}
	return nil
}

func scanReports(rows pgx.Rows) ([]*EncounterReport, error) {
	reports := make([]*EncounterReport, 0)
	for rows.Next() {
		var rep EncounterReport
		var durationMS int64
		if err := rows.Scan(
			&rep.ID, &rep.ScenarioID, &rep.Seed, &rep.Policy, &rep.Outcome, &rep.Rounds,
			&rep.Survivors, &rep.Casualties, &rep.CombatLog, &durationMS, &rep.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning encounter report row: %w", err)
		}
		rep.Duration = time.Duration(durationMS) * time.Millisecond
		reports = append(reports, &rep)
	}
	return reports, rows.Err()
}
