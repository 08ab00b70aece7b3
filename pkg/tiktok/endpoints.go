package tiktok

import (
	"net/url"
	"strconv"
)

const (
	// DefaultBaseURL is the upstream origin
	DefaultBaseURL = "https://www.tiktok.com"

	// searchEndpoint lists users matching a search term
	searchEndpoint = "/api/search/user/full/"

	// userDetailEndpoint resolves a username to a full profile
	userDetailEndpoint = "/api/user/detail/"

	// postListEndpoint pages through a user's posts
	postListEndpoint = "/api/post/item_list/"

	// commentListEndpoint pages through a post's comments
	commentListEndpoint = "/api/comment/list/"

	// webSearchCode is an opaque experiment blob the search endpoint
	// requires verbatim
	webSearchCode = `{"tiktok":{"client_params_x":{"search_engine":{"ies_mt_user_live_video_card_use_libra":1,"mt_search_general_user_live_card":1}},"search_server":{}}}`
)

// searchParams builds the caller params for the user search endpoint
func searchParams(term string) url.Values {
	params := url.Values{}
	params.Set("keyword", term)
	params.Set("cursor", "0")
	params.Set("from_page", "search")
	params.Set("web_search_code", webSearchCode)
	return params
}

// userDetailParams builds the caller params for the user detail endpoint
func userDetailParams(username string) url.Values {
	params := url.Values{}
	params.Set("uniqueId", username)
	params.Set("secUid", "")
	return params
}

// postListParams builds the caller params for one page of a user's posts
func postListParams(secUID string, count int, cursor string) url.Values {
	params := url.Values{}
	params.Set("secUid", secUID)
	params.Set("count", strconv.Itoa(count))
	params.Set("cursor", cursor)
	return params
}

// commentListParams builds the caller params for one page of a post's comments
func commentListParams(postID string, count int, cursor string) url.Values {
	params := url.Values{}
	params.Set("aweme_id", postID)
	params.Set("count", strconv.Itoa(count))
	params.Set("cursor", cursor)
	return params
}
