package sqlinline

const QEnqueueImageJob = `--sql 9110520f-c730-4f42-b534-18ecbfb254df
insert into image_jobs(id, user_id, session_id, status, prompt, quantity, aspect_ratio, provider, properties, created_at, updated_at)
select gen_random_uuid(), s.user_id, s.id, 'QUEUED', $3::text, $4::int, $5::text, $6::text, '{}'::jsonb, now(), now()
from sessions s
where s.id = $1::uuid and s.user_id = $2::uuid
returning id;
`

// QClaimImageJob hands exactly one queued job to a worker. Skip-locked keeps
// concurrent workers from claiming the same row.
const QClaimImageJob = `--sql 6b2e49c1-7a0f-4d8e-9c3b-52d1a84f7e0a
update image_jobs
set status = 'RUNNING', updated_at = now()
where id = (
    select id
    from image_jobs
    where status = 'QUEUED'
    order by created_at asc
    for update skip locked
    limit 1
)
returning id, user_id, session_id, prompt, quantity, aspect_ratio, provider;
`

const QSelectImageJob = `--sql f21974d1-0b1d-403f-a7a2-48bb57504c41
select id, user_id, session_id, status, provider, quantity, aspect_ratio, created_at, updated_at, properties
from image_jobs
where id = $1::uuid and user_id = $2::uuid;
`

const QSelectJobAssets = `--sql c7a61acf-2d80-4724-98a1-fed552dc290b
select id, storage_key, mime, bytes, width, height, aspect_ratio, properties, created_at
from image_assets
where job_id = $1::uuid and user_id = $2::uuid
order by created_at asc;
`
