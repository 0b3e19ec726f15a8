package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"
	// RouteRegister is the registration route.
	RouteRegister = "/register"
	// RouteLogin is the login route.
	RouteLogin = "/login"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"
	// RoutePost is the single post route pattern.
	RoutePost = "/post/{id}"
	// RouteNewPost is the post creation route.
	RouteNewPost = "/new-post"
	// RouteEditPost is the post editing route pattern.
	RouteEditPost = "/edit-post/{id}"
	// RouteDeletePost is the post deletion route pattern.
	RouteDeletePost = "/delete/{id}"
	// RouteDeleteComment is the comment deletion route pattern.
	RouteDeleteComment = "/delete/comment/{commentID}/{postID}"
	// RouteAbout is the about page route.
	RouteAbout = "/about"
	// RouteContact is the contact page route.
	RouteContact = "/contact"
	// RouteHealth is the health check route.
	RouteHealth = "/health"
)

const (
	redirectRoot    = RouteRoot
	redirectLogin   = RouteLogin
	redirectNewPost = RouteNewPost

	redirectPostID = "/post/%d"
)
