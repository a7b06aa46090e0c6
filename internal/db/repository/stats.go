package repository

import (
	"context"

	"radsync/internal/domain"
)

// Stats returns aggregate counts over the attribute tables.
func (s *Store) Stats(ctx context.Context) (domain.StoreStats, error) {
	var st domain.StoreStats
	err := s.readDB.QueryRowContext(ctx,
		`SELECT
		   (SELECT COUNT(DISTINCT username) FROM radcheck),
		   (SELECT COUNT(*) FROM radcheck WHERE attribute = ?),
		   (SELECT COUNT(*) FROM radcheck),
		   (SELECT COUNT(*) FROM radreply),
		   (SELECT COUNT(DISTINCT nasidentifier) FROM radpostauth WHERE nasidentifier <> ''),
		   (SELECT COUNT(*) FROM radcheck WHERE attribute = ? AND value = ?)`,
		domain.AttrCallingStationID,
		domain.AttrAuthType, domain.SentinelDisabledValue).
		Scan(&st.Users, &st.MacBindings, &st.CheckRows, &st.ReplyRows, &st.DistinctNas, &st.DisabledUsers)
	if err != nil {
		return domain.StoreStats{}, err
	}
	return st, nil
}
