package dashboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	coredash "github.com/kilianp07/bikedash/core/dashboard"
	"github.com/kilianp07/bikedash/core/filter"
	"github.com/kilianp07/bikedash/core/model"
	"github.com/kilianp07/bikedash/core/stats"
	"github.com/kilianp07/bikedash/infra/cache"
	"github.com/kilianp07/bikedash/infra/chart"
	"github.com/kilianp07/bikedash/pkg/export"
)

// maxBins bounds the histogram bin count accepted from callers.
const maxBins = 200

type option struct {
	Code  int    `json:"code"`
	Label string `json:"label"`
}

type groupOption struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}

// BoundsResponse describes the dataset and the selectable values.
type BoundsResponse struct {
	Start    string        `json:"start"`
	End      string        `json:"end"`
	Records  int           `json:"records"`
	Seasons  []option      `json:"seasons"`
	Weathers []option      `json:"weathers"`
	Groups   []groupOption `json:"groups"`
}

func (r *Router) bounds(c *gin.Context) {
	b := r.ds.Bounds()
	resp := BoundsResponse{
		Start:   b.Start.Format(model.DateLayout),
		End:     b.End.Format(model.DateLayout),
		Records: r.ds.Len(),
	}
	for _, s := range model.Seasons {
		resp.Seasons = append(resp.Seasons, option{Code: int(s), Label: s.String()})
	}
	for _, w := range model.Weathers {
		resp.Weathers = append(resp.Weathers, option{Code: int(w), Label: w.String()})
	}
	for _, k := range model.GroupKeys {
		resp.Groups = append(resp.Groups, groupOption{Key: k.String(), Title: k.Title()})
	}
	c.JSON(http.StatusOK, resp)
}

func readQuery(c *gin.Context) coredash.Query {
	return coredash.Query{
		Start:    c.Query("start"),
		End:      c.Query("end"),
		Seasons:  c.QueryArray("season"),
		Weathers: c.QueryArray("weather"),
		Groups:   c.QueryArray("group"),
	}
}

func (r *Router) criteria(c *gin.Context) (model.FilterCriteria, []model.GroupKey, error) {
	return readQuery(c).Parse(r.ds.Bounds())
}

func (r *Router) binCount(c *gin.Context) (int, error) {
	s := c.Query("bins")
	if s == "" {
		return r.bins, nil
	}
	n, err := strconv.Atoi(s)
	if err == nil && (n < 1 || n > maxBins) {
		err = errors.New("out of range")
	}
	if err != nil {
		return 0, &coredash.ParamError{Param: "bins", Value: s, Err: err}
	}
	return n, nil
}

// cacheEntry is the cached form of a JSON answer.
type cacheEntry struct {
	Records int             `json:"records"`
	Body    json.RawMessage `json:"body"`
}

// cachedJSON answers from the cache when possible, otherwise computes the
// body with fn and stores it.
func (r *Router) cachedJSON(c *gin.Context, key string, fn func() (any, int, error)) (int, error) {
	ctx := c.Request.Context()
	if raw, ok, err := r.cache.Get(ctx, key); err != nil {
		r.log.Warnf("cache get %s: %v", key, err)
	} else if ok {
		var e cacheEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			r.log.Warnf("cache decode %s: %v", key, err)
		} else {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, "application/json; charset=utf-8", e.Body)
			return e.Records, nil
		}
	}
	v, n, err := fn()
	if err != nil {
		return n, err
	}
	body, err := json.Marshal(v)
	if err != nil {
		return n, err
	}
	if raw, err := json.Marshal(cacheEntry{Records: n, Body: body}); err != nil {
		r.log.Warnf("cache encode %s: %v", key, err)
	} else if err := r.cache.Set(ctx, key, raw); err != nil {
		r.log.Warnf("cache set %s: %v", key, err)
	}
	c.Header("X-Cache", "MISS")
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
	return n, nil
}

func groupsKey(groups []model.GroupKey) string {
	if groups == nil {
		return "all"
	}
	parts := make([]string, len(groups))
	for i, g := range groups {
		parts[i] = g.String()
	}
	return strings.Join(parts, ",")
}

func (r *Router) dashboard(c *gin.Context) (int, error) {
	crit, groups, err := r.criteria(c)
	if err != nil {
		return 0, err
	}
	bins, err := r.binCount(c)
	if err != nil {
		return 0, err
	}
	key := cache.Key(r.prefix, "dashboard", crit, groupsKey(groups), strconv.Itoa(bins))
	return r.cachedJSON(c, key, func() (any, int, error) {
		d, err := coredash.Build(r.ds, crit, coredash.Options{Groups: groups, Bins: bins})
		return d, d.Summary.Count, err
	})
}

func (r *Router) summary(c *gin.Context) (int, error) {
	crit, _, err := r.criteria(c)
	if err != nil {
		return 0, err
	}
	return r.cachedJSON(c, cache.Key(r.prefix, "summary", crit), func() (any, int, error) {
		v, err := filter.Apply(r.ds, crit)
		if err != nil {
			return nil, 0, err
		}
		return stats.Summarize(v), v.Len(), nil
	})
}

func (r *Router) groups(c *gin.Context) (int, error) {
	key, err := model.ParseGroupKey(c.Param("key"))
	if err != nil {
		return 0, err
	}
	crit, _, err := r.criteria(c)
	if err != nil {
		return 0, err
	}
	return r.cachedJSON(c, cache.Key(r.prefix, "groups", crit, key.String()), func() (any, int, error) {
		v, err := filter.Apply(r.ds, crit)
		if err != nil {
			return nil, 0, err
		}
		return coredash.Category{Key: key.String(), Title: key.Title(), Values: stats.GroupAverage(v, key)}, v.Len(), nil
	})
}

func (r *Router) trend(c *gin.Context) (int, error) {
	crit, _, err := r.criteria(c)
	if err != nil {
		return 0, err
	}
	return r.cachedJSON(c, cache.Key(r.prefix, "trend", crit), func() (any, int, error) {
		v, err := filter.Apply(r.ds, crit)
		if err != nil {
			return nil, 0, err
		}
		return stats.MonthlyTrend(v), v.Len(), nil
	})
}

func (r *Router) histogram(c *gin.Context) (int, error) {
	crit, _, err := r.criteria(c)
	if err != nil {
		return 0, err
	}
	bins, err := r.binCount(c)
	if err != nil {
		return 0, err
	}
	return r.cachedJSON(c, cache.Key(r.prefix, "histogram", crit, strconv.Itoa(bins)), func() (any, int, error) {
		v, err := filter.Apply(r.ds, crit)
		if err != nil {
			return nil, 0, err
		}
		return stats.Histogram(v, bins), v.Len(), nil
	})
}

func (r *Router) chart(c *gin.Context) (int, error) {
	name, ok := strings.CutSuffix(c.Param("file"), ".png")
	if !ok {
		return 0, chart.ErrUnknownChart
	}
	crit, _, err := r.criteria(c)
	if err != nil {
		return 0, err
	}
	bins, err := r.binCount(c)
	if err != nil {
		return 0, err
	}
	d, err := coredash.Build(r.ds, crit, coredash.Options{Bins: bins})
	if err != nil {
		return 0, err
	}
	var buf bytes.Buffer
	err = chart.Render(&buf, name, d, r.charts)
	if errors.Is(err, chart.ErrNoData) {
		c.Status(http.StatusNoContent)
		return 0, nil
	}
	if err != nil {
		return d.Summary.Count, err
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
	return d.Summary.Count, nil
}

func (r *Router) export(c *gin.Context) (int, error) {
	crit, groups, err := r.criteria(c)
	if err != nil {
		return 0, err
	}
	d, err := coredash.Build(r.ds, crit, coredash.Options{Groups: groups, Bins: r.bins})
	if err != nil {
		return 0, err
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, d); err != nil {
		return d.Summary.Count, err
	}
	c.Header("Content-Disposition", "attachment; filename=bikedash.csv")
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
	return d.Summary.Count, nil
}

func (r *Router) getView(c *gin.Context) (int, error) {
	d := r.session.Current()
	c.JSON(http.StatusOK, d)
	return d.Summary.Count, nil
}

func (r *Router) putView(c *gin.Context) (int, error) {
	var q coredash.Query
	if err := c.ShouldBindJSON(&q); err != nil {
		return 0, &coredash.ParamError{Param: "body", Err: err}
	}
	crit, groups, err := q.Parse(r.ds.Bounds())
	if err != nil {
		return 0, err
	}
	d, err := r.session.Update(crit, groups)
	if err != nil {
		return 0, err
	}
	c.JSON(http.StatusOK, d)
	return d.Summary.Count, nil
}
