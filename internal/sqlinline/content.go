package sqlinline

const QInsertContentVariant = `--sql 28f0faee-8dea-4d53-8a3c-214cb646b658
insert into content_variants(id, session_id, kind, body, provider, created_at)
values (gen_random_uuid(), $1::uuid, $2::text, $3::text, $4::text, now())
returning id;
`

const QSelectSessionContent = `--sql 544660fd-6cf3-4e07-8549-2678e54bb005
select cv.id, cv.kind, cv.body, cv.provider, cv.created_at
from content_variants cv
join sessions s on s.id = cv.session_id
where cv.session_id = $1::uuid and s.user_id = $2::uuid
order by cv.created_at asc;
`
