package sqlinline

const QSelectSettings = `--sql a96be6a1-d579-43b3-852c-26b506bf244b
select tone, platform, locale, aspect_ratio, updated_at
from user_settings
where user_id = $1::uuid;
`

const QUpsertSettings = `--sql 76566e14-9bea-4445-bc6d-ff06c17ea739
insert into user_settings(user_id, tone, platform, locale, aspect_ratio, updated_at)
values ($1::uuid, $2::text, $3::text, $4::text, $5::text, now())
on conflict (user_id) do update set
    tone = excluded.tone,
    platform = excluded.platform,
    locale = excluded.locale,
    aspect_ratio = excluded.aspect_ratio,
    updated_at = now()
returning updated_at;
`
