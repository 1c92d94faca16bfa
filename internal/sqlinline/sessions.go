package sqlinline

const QInsertSession = `--sql b5c89d65-adae-4def-ac12-f7ab0340e472
insert into sessions(id, user_id, title, idea, status, brief_json, created_at, updated_at)
values (gen_random_uuid(), $1::uuid, $2::text, $3::text, 'draft', $4::jsonb, now(), now())
returning id, created_at;
`

const QSelectSessionByID = `--sql 966e62a2-fccf-4746-8404-d10111659983
select id, user_id, title, idea, status, brief_json, remixed_from, published_at, created_at, updated_at
from sessions
where id = $1::uuid and user_id = $2::uuid;
`

const QListSessions = `--sql 16a727ab-c936-48cb-bb2c-af978cef84c5
select id, title, idea, status, published_at, created_at, updated_at
from sessions
where user_id = $1::uuid and status <> 'archived'
order by updated_at desc
limit $2::int;
`

const QUpdateSessionStatus = `--sql b76ec5ad-faea-41c3-9200-f9549fa4f627
update sessions
set status = $3::text,
    published_at = case when $3::text = 'published' then now() else published_at end,
    updated_at = now()
where id = $1::uuid and user_id = $2::uuid
returning status, published_at;
`

const QArchiveSession = `--sql 7e5d7695-8725-487d-855f-79ec05860571
update sessions
set status = 'archived', updated_at = now()
where id = $1::uuid and user_id = $2::uuid;
`

const QRemixSession = `--sql 57111ee6-cd88-43a3-8149-7fa37fa51cc9
insert into sessions(id, user_id, title, idea, status, brief_json, remixed_from, created_at, updated_at)
select gen_random_uuid(), user_id, $3::text, $4::text, 'draft', $5::jsonb, id, now(), now()
from sessions
where id = $1::uuid and user_id = $2::uuid
returning id, created_at;
`
