package report

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Date format for HeaderTable (ISO 8601)
const headerDateFormat = "2006-01-02"

// DBWriter writes features to an SQLite database file
type DBWriter struct {
	db          *sql.DB
	outputPath  string
	headerStmt  *sql.Stmt
	featureStmt *sql.Stmt
	pointStmt   *sql.Stmt
	featureID   int
}

// NewDBWriter creates the tables of a feature database at outputPath
func NewDBWriter(outputPath string) (*DBWriter, error) {
	db, err := sql.Open("sqlite", outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	w := &DBWriter{
		db:         db,
		outputPath: outputPath,
		featureID:  1,
	}

	if err := w.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	if err := w.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}

	return w, nil
}

// createTables creates the required database schema
func (w *DBWriter) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS HeaderTable (
		version TEXT NOT NULL,
		CreationDate TEXT,
		Source TEXT,
		Params TEXT
	);

	CREATE TABLE IF NOT EXISTS FeatureTable (
		FeatureId INTEGER PRIMARY KEY,
		FirstScan INTEGER,
		LastScan INTEGER,
		BestScan INTEGER,
		NumScans INTEGER,
		Charge INTEGER,
		MonoMass DOUBLE,
		BasePeak DOUBLE,
		Intensity DOUBLE,
		SumIntensity DOUBLE,
		FirstRTime DOUBLE,
		LastRTime DOUBLE,
		RTime DOUBLE,
		XCorr DOUBLE,
		Modifications TEXT,
		GaussAmplitude DOUBLE,
		GaussCenter DOUBLE,
		GaussWidth DOUBLE,
		GaussBaseline DOUBLE,
		GaussR2 DOUBLE,
		MS2Events INTEGER,
		Sequence TEXT,
		Gene TEXT
	);

	CREATE TABLE IF NOT EXISTS PointTable (
		FeatureId INTEGER REFERENCES FeatureTable(FeatureId),
		ScanNumber INTEGER,
		RetentionTime DOUBLE,
		Intensity DOUBLE,
		MonoMass DOUBLE,
		XCorr DOUBLE,
		Interpolated BOOL
	);

	CREATE INDEX IF NOT EXISTS PointFeatureIndex ON PointTable(FeatureId);
	`

	_, err := w.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// prepareStatements prepares SQL statements for batch insertion
func (w *DBWriter) prepareStatements() error {
	var err error

	w.headerStmt, err = w.db.Prepare(`
		INSERT INTO HeaderTable (version, CreationDate, Source, Params)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare header statement: %w", err)
	}

	w.featureStmt, err = w.db.Prepare(`
		INSERT INTO FeatureTable (
			FeatureId, FirstScan, LastScan, BestScan, NumScans, Charge,
			MonoMass, BasePeak, Intensity, SumIntensity, FirstRTime,
			LastRTime, RTime, XCorr, Modifications, GaussAmplitude,
			GaussCenter, GaussWidth, GaussBaseline, GaussR2, MS2Events,
			Sequence, Gene
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare feature statement: %w", err)
	}

	w.pointStmt, err = w.db.Prepare(`
		INSERT INTO PointTable (
			FeatureId, ScanNumber, RetentionTime, Intensity, MonoMass,
			XCorr, Interpolated
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare point statement: %w", err)
	}

	return nil
}

// Write stores a header row and all features with their points in a
// single transaction
func (w *DBWriter) Write(t *Table) error {
	par, err := json.Marshal(t.Params)
	if err != nil {
		return fmt.Errorf("failed to encode parameters: %w", err)
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Stmt(w.headerStmt).Exec(FormatVersion,
		time.Now().Format(headerDateFormat), t.Source, string(par)); err != nil {
		return fmt.Errorf("failed to insert header: %w", err)
	}

	featureStmt := tx.Stmt(w.featureStmt)
	pointStmt := tx.Stmt(w.pointStmt)
	for i := range t.Features {
		f := &t.Features[i]
		g := f.Gauss
		_, err := featureStmt.Exec(
			w.featureID,            // FeatureId
			f.LowScan,              // FirstScan
			f.HighScan,             // LastScan
			f.BestScan,             // BestScan
			f.Datapoints(),         // NumScans
			f.Charge,               // Charge
			f.MonoMass,             // MonoMass
			f.BasePeak,             // BasePeak
			f.Intensity,            // Intensity
			f.SumIntensity,         // SumIntensity
			f.FirstRTime,           // FirstRTime
			f.LastRTime,            // LastRTime
			f.RTime,                // RTime
			f.XCorr,                // XCorr
			t.mod(f.Mods),          // Modifications
			g.Amplitude,            // GaussAmplitude
			g.Center,               // GaussCenter
			g.Width,                // GaussWidth
			g.Baseline,             // GaussBaseline
			g.R2,                   // GaussR2
			f.MS2Events,            // MS2Events
			nullString(f.Sequence), // Sequence
			nullString(f.Gene),     // Gene
		)
		if err != nil {
			return fmt.Errorf("failed to insert feature %d: %w", w.featureID, err)
		}
		for _, p := range f.Points {
			if _, err := pointStmt.Exec(w.featureID, p.ScanNum, p.RTime,
				p.Intensity, p.MonoMass, p.XCorr, p.Interpolated); err != nil {
				return fmt.Errorf("failed to insert point of feature %d: %w", w.featureID, err)
			}
		}
		w.featureID++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func nullString(s string) interface{} {
	if s == `` {
		return nil
	}
	return s
}

// Close releases the prepared statements and closes the database
func (w *DBWriter) Close() error {
	for _, s := range []*sql.Stmt{w.headerStmt, w.featureStmt, w.pointStmt} {
		if s != nil {
			s.Close()
		}
	}
	return w.db.Close()
}
