package remote

import (
	"context"

	"github.com/baharkarakas/betzone-api/internal/models"
	"github.com/baharkarakas/betzone-api/internal/supabase"
)

type adminRepo struct{ c *supabase.Client }

func (r *adminRepo) Stats(ctx context.Context) (models.AdminStats, error) {
	var out models.AdminStats
	err := r.c.RPC(ctx, "get_admin_stats", nil, &out)
	return out, err
}
