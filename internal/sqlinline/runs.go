package sqlinline

const QInsertPipelineRun = `--sql 83f94f47-60ac-4e9f-8515-4dc0e947e1f3
insert into pipeline_runs (id, backend, mode, status, stage, started_at)
values ($1::text, $2::text, $3::text, $4::text, $5::text, $6::timestamptz);
`

const QFinishPipelineRun = `--sql 25e899f6-d77d-477a-b472-eacd4573b9ab
update pipeline_runs
set status = $2::text,
    stage = $3::text,
    prompt = nullif($4::text, ''),
    public_url = nullif($5::text, ''),
    caption = nullif($6::text, ''),
    content_filtered = $7::boolean,
    error_message = nullif($8::text, ''),
    finished_at = $9::timestamptz
where id = $1::text;
`

const QListRecentPipelineRuns = `--sql ce10033f-a6da-440e-810b-022bdc3f38d5
select
  id,
  backend,
  mode,
  status,
  stage,
  coalesce(prompt, ''),
  coalesce(public_url, ''),
  coalesce(caption, ''),
  content_filtered,
  coalesce(error_message, ''),
  started_at,
  finished_at
from pipeline_runs
order by started_at desc
limit $1::int;
`
