package sqlinline

const QInsertUsageEvent = `--sql d5607464-5e08-4da3-a77b-2c14930913ed
insert into usage_events(id, user_id, session_id, event_type, success, country, created_at, properties)
values (gen_random_uuid(), $1::uuid, $2::uuid, $3::text, $4::boolean, nullif($5::text, ''), now(), coalesce($6::jsonb, '{}'::jsonb));
`

const QInsertAsset = `--sql ad21cf93-de13-4056-b4fc-b60e485ea312
insert into image_assets(id, user_id, job_id, storage_key, mime, bytes, width, height, aspect_ratio, properties, created_at)
values (gen_random_uuid(), $1::uuid, $2::uuid, $3::text, $4::text, $5::bigint, $6::int, $7::int, $8::text, coalesce($9::jsonb, '{}'::jsonb), now());
`

const QUpdateJobStatus = `--sql 9a451b91-a3a6-442c-843d-6c8ca14f9454
update image_jobs
set status = $2::text, updated_at = now()
where id = $1::uuid;
`
