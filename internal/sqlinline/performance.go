package sqlinline

// QUpsertPerformance keeps at most one metrics row per session. Absent
// metrics stay NULL: "not recorded" must remain distinct from zero.
const QUpsertPerformance = `--sql 23cb8995-d047-4a4a-9b70-fa3fe425181a
insert into performance_metrics(session_id, views, likes, comments, reposts, note, recorded_at)
select s.id, $3::bigint, $4::bigint, $5::bigint, $6::bigint, $7::text, now()
from sessions s
where s.id = $1::uuid and s.user_id = $2::uuid and s.status = 'published'
on conflict (session_id) do update set
    views = excluded.views,
    likes = excluded.likes,
    comments = excluded.comments,
    reposts = excluded.reposts,
    note = excluded.note,
    recorded_at = now()
returning session_id, recorded_at;
`

const QCountPublishedSessions = `--sql 41e9f914-f813-4950-abcc-d65e8d94acc8
select count(*)
from sessions
where user_id = $1::uuid and status = 'published';
`

// QSelectPerformanceRecords joins the session title for reporting and
// filters to published ownership here, so the aggregation engine never
// sees rows for draft or archived sessions.
const QSelectPerformanceRecords = `--sql 054475db-1342-4235-81b7-ddd14c891ea9
select pm.session_id, s.title, pm.views, pm.likes, pm.comments, pm.reposts, pm.recorded_at
from performance_metrics pm
join sessions s on s.id = pm.session_id
where s.user_id = $1::uuid and s.status = 'published'
order by pm.recorded_at asc;
`
