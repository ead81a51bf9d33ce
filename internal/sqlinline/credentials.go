package sqlinline

const QSelectProviderCredential = `--sql 18d739e6-6743-4b8e-8052-552de7eda187
select secret
from provider_credentials
where provider = $1::text
limit 1;
`

const QUpsertProviderCredential = `--sql 71963fc4-9e8e-489b-8479-7b0ee239f724
insert into provider_credentials (provider, secret, properties, created_at, updated_at)
values ($1::text, $2::text, coalesce($3::jsonb, '{}'::jsonb), now(), now())
on conflict (provider) do update set
    secret = excluded.secret,
    properties = excluded.properties,
    updated_at = now();
`

const QListProviderCredentials = `--sql 0e6972c2-b219-4c06-bb46-4480841fa731
select provider, updated_at
from provider_credentials
order by provider;
`

const QDeleteProviderCredential = `--sql 1a74e79b-c616-49fc-8acf-21dedebd1957
delete from provider_credentials
where provider = $1::text;
`
