package sqlinline

// QCreateSchema creates the tables the service writes to. Safe to run on every start.
const QCreateSchema = `--sql ff05eedc-6c34-4b94-97b9-6059d751a517
create table if not exists pipeline_runs (
  id text primary key,
  backend text not null,
  mode text not null,
  status text not null,
  stage text not null default '',
  prompt text,
  public_url text,
  caption text,
  content_filtered boolean not null default false,
  error_message text,
  started_at timestamptz not null,
  finished_at timestamptz
);
create index if not exists pipeline_runs_started_at_idx on pipeline_runs (started_at desc);
create table if not exists provider_credentials (
  provider text primary key,
  secret text not null,
  properties jsonb not null default '{}'::jsonb,
  created_at timestamptz not null default now(),
  updated_at timestamptz not null default now()
);
`
