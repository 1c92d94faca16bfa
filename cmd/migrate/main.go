package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"server/internal/infra"
)

// Ordered schema migrations. Each entry runs once; schema_migrations keeps
// track of what has been applied.
var migrations = []struct {
	name string
	stmt string
}{
	{
		name: "001_sessions",
		stmt: `
create extension if not exists pgcrypto;

create table if not exists sessions (
    id uuid primary key default gen_random_uuid(),
    user_id uuid not null,
    title text not null,
    idea text not null,
    status text not null default 'draft',
    brief_json jsonb not null default '{}'::jsonb,
    remixed_from uuid references sessions(id),
    published_at timestamptz,
    created_at timestamptz not null default now(),
    updated_at timestamptz not null default now()
);

create index if not exists idx_sessions_user on sessions(user_id, created_at desc);
`,
	},
	{
		name: "002_content_variants",
		stmt: `
create table if not exists content_variants (
    id uuid primary key,
    session_id uuid not null references sessions(id) on delete cascade,
    kind text not null,
    body text not null,
    provider text not null,
    created_at timestamptz not null default now()
);

create index if not exists idx_content_variants_session on content_variants(session_id, created_at);
`,
	},
	{
		name: "003_performance_metrics",
		stmt: `
create table if not exists performance_metrics (
    session_id uuid primary key references sessions(id) on delete cascade,
    views bigint,
    likes bigint,
    comments bigint,
    reposts bigint,
    note text,
    recorded_at timestamptz not null default now()
);
`,
	},
	{
		name: "004_image_jobs",
		stmt: `
create table if not exists image_jobs (
    id uuid primary key,
    user_id uuid not null,
    session_id uuid not null references sessions(id) on delete cascade,
    status text not null default 'QUEUED',
    prompt text not null,
    quantity int not null default 1,
    aspect_ratio text not null default '1:1',
    provider text not null,
    properties jsonb not null default '{}'::jsonb,
    created_at timestamptz not null default now(),
    updated_at timestamptz not null default now()
);

create index if not exists idx_image_jobs_status on image_jobs(status, created_at);

create table if not exists image_assets (
    id uuid primary key,
    user_id uuid not null,
    job_id uuid not null references image_jobs(id) on delete cascade,
    storage_key text not null,
    mime text not null,
    bytes bigint not null default 0,
    width int not null default 0,
    height int not null default 0,
    aspect_ratio text not null default '1:1',
    properties jsonb not null default '{}'::jsonb,
    created_at timestamptz not null default now()
);

create index if not exists idx_image_assets_job on image_assets(job_id, created_at);
`,
	},
	{
		name: "005_user_settings",
		stmt: `
create table if not exists user_settings (
    user_id uuid primary key,
    tone text not null,
    platform text not null,
    locale text not null,
    aspect_ratio text not null,
    updated_at timestamptz not null default now()
);
`,
	},
	{
		name: "006_usage_events",
		stmt: `
create table if not exists usage_events (
    id uuid primary key,
    user_id uuid not null,
    session_id uuid,
    event_type text not null,
    success boolean not null default true,
    country text,
    properties jsonb not null default '{}'::jsonb,
    created_at timestamptz not null default now()
);

create index if not exists idx_usage_events_user on usage_events(user_id, created_at desc);
`,
	},
}

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("migrate: open database failed")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal().Err(err).Msg("migrate: ping database failed")
	}

	if _, err := db.Exec(`create table if not exists schema_migrations (
    name text primary key,
    applied_at timestamptz not null default now()
)`); err != nil {
		logger.Fatal().Err(err).Msg("migrate: ensure schema_migrations failed")
	}

	for _, m := range migrations {
		var exists bool
		if err := db.QueryRow(`select exists(select 1 from schema_migrations where name = $1)`, m.name).Scan(&exists); err != nil {
			logger.Fatal().Err(err).Str("migration", m.name).Msg("migrate: check failed")
		}
		if exists {
			logger.Debug().Str("migration", m.name).Msg("migrate: already applied")
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			logger.Fatal().Err(err).Str("migration", m.name).Msg("migrate: begin failed")
		}
		if _, err := tx.Exec(m.stmt); err != nil {
			_ = tx.Rollback()
			logger.Fatal().Err(err).Str("migration", m.name).Msg("migrate: apply failed")
		}
		if _, err := tx.Exec(`insert into schema_migrations(name) values ($1)`, m.name); err != nil {
			_ = tx.Rollback()
			logger.Fatal().Err(err).Str("migration", m.name).Msg("migrate: record failed")
		}
		if err := tx.Commit(); err != nil {
			logger.Fatal().Err(err).Str("migration", m.name).Msg("migrate: commit failed")
		}
		logger.Info().Str("migration", m.name).Msg("migrate: applied")
	}

	logger.Info().Msg("migrate: database up to date")
}
