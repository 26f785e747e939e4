//go:build integration
// +build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RatingTestSuite struct {
	suite.Suite
	client *http.Client
	userID int64
}

func (suite *RatingTestSuite) SetupSuite() {
	suite.client = &http.Client{Timeout: 30 * time.Second}
	// A fresh user id per run keeps reruns against the same database independent
	suite.userID = time.Now().Unix()
}

func (suite *RatingTestSuite) postJSON(path string, body interface{}) *http.Response {
	jsonData, err := json.Marshal(body)
	require.NoError(suite.T(), err)

	resp, err := suite.client.Post(APIBaseURL+path, "application/json", bytes.NewBuffer(jsonData))
	require.NoError(suite.T(), err)
	return resp
}

func (suite *RatingTestSuite) TestRateMovie() {
	resp := suite.postJSON("/api/v1/ratings", map[string]interface{}{
		"user_id":  suite.userID,
		"movie_id": 1,
		"rating":   4.5,
	})
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(suite.T(), json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(suite.T(), float64(suite.userID), body["user_id"])
	assert.Equal(suite.T(), float64(1), body["movie_id"])
	assert.Equal(suite.T(), 4.5, body["rating"])
	assert.NotZero(suite.T(), body["timestamp"])
}

func (suite *RatingTestSuite) TestRateMovieInvalidScore() {
	resp := suite.postJSON("/api/v1/ratings", map[string]interface{}{
		"user_id":  suite.userID,
		"movie_id": 1,
		"rating":   3.7,
	})
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusBadRequest, resp.StatusCode)
}

func (suite *RatingTestSuite) TestReRateOverwrites() {
	resp := suite.postJSON("/api/v1/ratings", map[string]interface{}{
		"user_id":  suite.userID,
		"movie_id": 2,
		"rating":   2.0,
	})
	resp.Body.Close()

	resp = suite.postJSON("/api/v1/ratings", map[string]interface{}{
		"user_id":  suite.userID,
		"movie_id": 2,
		"rating":   5.0,
	})
	resp.Body.Close()

	resp, err := suite.client.Get(fmt.Sprintf("%s/api/v1/ratings/%d/2", APIBaseURL, suite.userID))
	require.NoError(suite.T(), err)
	defer resp.Body.Close()

	require.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(suite.T(), json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(suite.T(), float64(5), body["rating"])
}

func (suite *RatingTestSuite) TestGetRatingNotFound() {
	resp, err := suite.client.Get(fmt.Sprintf("%s/api/v1/ratings/%d/999999", APIBaseURL, suite.userID))
	require.NoError(suite.T(), err)
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusNotFound, resp.StatusCode)
}

func (suite *RatingTestSuite) TestMergeRatings() {
	now := time.Now().Unix()
	resp := suite.postJSON("/api/v1/ratings/merge", map[string]interface{}{
		"ratings": []map[string]interface{}{
			{"user_id": suite.userID, "movie_id": 3, "rating": 4.0, "timestamp": now},
			{"user_id": suite.userID, "movie_id": 4, "rating": 1.5, "timestamp": now},
			// Duplicate key: the later timestamp must win
			{"user_id": suite.userID, "movie_id": 3, "rating": 5.0, "timestamp": now + 60},
		},
	})
	defer resp.Body.Close()

	require.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	// merged_total reports the whole store after the merge, so only a
	// lower bound can be asserted against a shared database
	var body map[string]interface{}
	require.NoError(suite.T(), json.NewDecoder(resp.Body).Decode(&body))
	assert.GreaterOrEqual(suite.T(), body["merged_total"], float64(2))

	resp2, err := suite.client.Get(fmt.Sprintf("%s/api/v1/ratings/%d/3", APIBaseURL, suite.userID))
	require.NoError(suite.T(), err)
	defer resp2.Body.Close()

	require.Equal(suite.T(), http.StatusOK, resp2.StatusCode)

	var merged map[string]interface{}
	require.NoError(suite.T(), json.NewDecoder(resp2.Body).Decode(&merged))
	assert.Equal(suite.T(), float64(5), merged["rating"])
}

func (suite *RatingTestSuite) TestMergeRatingsEmpty() {
	resp := suite.postJSON("/api/v1/ratings/merge", map[string]interface{}{
		"ratings": []map[string]interface{}{},
	})
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusBadRequest, resp.StatusCode)
}
